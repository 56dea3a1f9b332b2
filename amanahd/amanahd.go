// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	v1 "github.com/amanahdao/amanah/api/v1"
	"github.com/amanahdao/amanah/events"
	"github.com/amanahdao/amanah/gov"
	"github.com/amanahdao/amanah/gov/compliance"
	"github.com/amanahdao/amanah/gov/governance"
	"github.com/amanahdao/amanah/gov/multisig"
	"github.com/amanahdao/amanah/gov/registry"
	"github.com/amanahdao/amanah/gov/soulbound"
	"github.com/amanahdao/amanah/store"
	"github.com/amanahdao/amanah/store/localdb"
	"github.com/amanahdao/amanah/util"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const (
	// reqBodySizeLimit is the maximum number of bytes allowed in a
	// request body.
	reqBodySizeLimit = 512 * 1024 // 512 KiB

	// clockKey is the store key that the pipeline genesis timestamp is
	// saved under. The genesis must survive restarts or the voting
	// window heights of open proposals would shift.
	clockKey = "clock-v1"
)

// amanahd is the application context for the amanah daemon.
type amanahd struct {
	cfg    *config
	router *mux.Router
	db     store.BlobKV
	events *events.Manager
	clock  gov.Clock

	// Reference soulbound collaborators. Identity issuance and
	// reputation accounting proper are external concerns; these are
	// administered through the identity admin routes.
	identities *soulbound.MemRegistry
	ledger     *soulbound.MemLedger

	// Pipeline components
	governance *governance.Governance
	registry   *registry.Registry
	compliance *compliance.Compliance
	multisig   *multisig.Multisig
}

// execCaller satisfies multisig.Caller. Treasury and fundraising dispatch is
// an external concern; the reference caller logs the call and reports
// success. Real integrations replace this with a client for their target
// system.
type execCaller struct{}

func (execCaller) Call(target string, value uint64, payload []byte) error {
	log.Infof("External call: target %v value %v payload %v bytes",
		target, value, len(payload))
	return nil
}

// clockState is the persisted pipeline clock state.
type clockState struct {
	Genesis int64 `json:"genesis"` // UNIX timestamp of height zero
}

// setupClock returns the pipeline clock. The genesis timestamp is loaded
// from the store, or set to the current time and persisted on first
// startup.
func setupClock(db store.BlobKV, interval time.Duration) (gov.Clock, error) {
	var cs clockState
	blobs, err := db.Get([]string{clockKey})
	if err != nil {
		return nil, err
	}
	if b, ok := blobs[clockKey]; ok {
		err = json.Unmarshal(b, &cs)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	} else {
		cs.Genesis = time.Now().Unix()
		b, err := json.Marshal(cs)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		err = db.Put(map[string][]byte{clockKey: b}, false)
		if err != nil {
			return nil, err
		}
	}

	genesis := time.Unix(cs.Genesis, 0)
	log.Infof("Pipeline genesis: %v, height interval: %v",
		genesis.UTC(), interval)

	return gov.NewTickerClock(genesis, interval), nil
}

// handleNotFound is a generic handler for an invalid route.
func (d *amanahd) handleNotFound(w http.ResponseWriter, r *http.Request) {
	log.Debugf("Invalid route: %v %v %v %v", util.RemoteAddr(r), r.Method,
		r.URL, r.Proto)

	// Trace incoming request
	log.Tracef("%v", newLogClosure(func() string {
		trace, err := httputil.DumpRequest(r, true)
		if err != nil {
			trace = []byte(fmt.Sprintf("logging: "+
				"DumpRequest %v", err))
		}
		return string(trace)
	}))

	util.RespondWithJSON(w, http.StatusNotFound, v1.ServerErrorReply{})
}

// respondWithError checks the error type and responds with either a 400
// reply, when the error was caused by the user, or a 500 reply, when an
// unexpected server error occurred. The filled in format string is logged
// alongside the reply.
func respondWithError(w http.ResponseWriter, r *http.Request, format string, err error) {
	var ue gov.UserError
	if errors.As(err, &ue) {
		m := fmt.Sprintf(format, err)
		log.Infof("%v User error: %v", util.RemoteAddr(r), m)
		util.RespondWithJSON(w, http.StatusBadRequest,
			v1.PipelineErrorReply{
				ErrorCode:    uint32(ue.ErrorCode),
				ErrorMessage: gov.ErrorCodes[ue.ErrorCode],
				ErrorContext: ue.ErrorContext,
			})
		return
	}

	// Internal server error. Log it and return a 500 with an error code
	// that the user can provide for correlation with the server logs.
	t := time.Now().Unix()
	m := fmt.Sprintf(format, err)
	log.Errorf("%v %v %v %v Internal error %v: %v",
		util.RemoteAddr(r), r.Method, r.URL, r.Proto, t, m)
	log.Errorf("Stacktrace (NOT A REAL CRASH): %s", debug.Stack())

	util.RespondWithJSON(w, http.StatusInternalServerError,
		v1.ServerErrorReply{
			ErrorCode: t,
		})
}

// respondWithUserError responds with a 400 transport level user error.
func respondWithUserError(w http.ResponseWriter, errorCode v1.ErrorCodeT, errorContext string) {
	util.RespondWithJSON(w, http.StatusBadRequest, v1.UserErrorReply{
		ErrorCode:    errorCode,
		ErrorContext: errorContext,
	})
}

// logging logs all incoming commands before calling the next function.
func logging(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Trace incoming request
		log.Tracef("%v", newLogClosure(func() string {
			trace, err := httputil.DumpRequest(r, true)
			if err != nil {
				trace = []byte(fmt.Sprintf("logging: "+
					"DumpRequest %v", err))
			}
			return string(trace)
		}))

		// Log incoming connection
		log.Infof("%v %v %v %v", util.RemoteAddr(r), r.Method, r.URL,
			r.Proto)
		f(w, r)
	}
}

// closeBody closes the request body after the provided handler is called.
func closeBody(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f(w, r)
		r.Body.Close()
	}
}

// maxBodySize applies a maximum size limit to the request body.
func maxBodySize(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, reqBodySizeLimit)
		f(w, r)
	}
}

// recoverer recovers from any panics by logging the panic and returning a
// 500 response.
func recoverer(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				errorCode := time.Now().Unix()
				log.Criticalf("%v %v %v %v Internal error %v: %v",
					util.RemoteAddr(r), r.Method, r.URL,
					r.Proto, errorCode, err)
				log.Criticalf("Stacktrace (THIS IS AN ACTUAL "+
					"PANIC): %s", debug.Stack())

				util.RespondWithJSON(w,
					http.StatusInternalServerError,
					v1.ServerErrorReply{
						ErrorCode: errorCode,
					})
			}
		}()

		f(w, r)
	}
}

// addRoute adds a route to the router with the full middleware chain.
func (d *amanahd) addRoute(method string, route string, handler http.HandlerFunc) {
	handler = recoverer(closeBody(logging(maxBodySize(handler))))
	d.router.StrictSlash(true).HandleFunc(route, handler).Methods(method)
}

// setupRoutes sets up the daemon routes.
func (d *amanahd) setupRoutes() {
	d.router = mux.NewRouter()
	d.router.NotFoundHandler = closeBody(d.handleNotFound)

	// Version
	d.addRoute(http.MethodGet, v1.VersionRoute, d.handleVersion)

	// Community governance
	d.addRoute(http.MethodPost, v1.ProposalNewRoute, d.handleProposalNew)
	d.addRoute(http.MethodPost, v1.ProposalVoteRoute, d.handleProposalVote)
	d.addRoute(http.MethodPost, v1.ProposalCancelRoute,
		d.handleProposalCancel)
	d.addRoute(http.MethodPost, v1.ProposalExecuteRoute,
		d.handleProposalExecute)
	d.addRoute(http.MethodPost, v1.ProposalDetailsRoute,
		d.handleProposalDetails)
	d.addRoute(http.MethodPost, v1.ProposalVotesRoute,
		d.handleProposalVotes)
	d.addRoute(http.MethodGet, v1.ProposalsRoute, d.handleProposals)
	d.addRoute(http.MethodGet, v1.ParamsRoute, d.handleParams)
	d.addRoute(http.MethodPost, v1.ParamsSetRoute, d.handleParamsSet)

	// Proposal registry
	d.addRoute(http.MethodPost, v1.RegisterRoute, d.handleRegister)
	d.addRoute(http.MethodPost, v1.RecordStatusRoute, d.handleRecordStatus)
	d.addRoute(http.MethodPost, v1.RecordRoute, d.handleRecord)
	d.addRoute(http.MethodPost, v1.BatchNewRoute, d.handleBatchNew)
	d.addRoute(http.MethodPost, v1.BatchExecuteRoute, d.handleBatchExecute)
	d.addRoute(http.MethodPost, v1.BatchRoute, d.handleBatch)
	d.addRoute(http.MethodGet, v1.RecordsRoute, d.handleRecords)

	// Compliance review
	d.addRoute(http.MethodPost, v1.ReviewSubmitRoute, d.handleReviewSubmit)
	d.addRoute(http.MethodPost, v1.ReviewVetoRoute, d.handleReviewVeto)
	d.addRoute(http.MethodPost, v1.ReviewDetailsRoute,
		d.handleReviewDetails)
	d.addRoute(http.MethodGet, v1.CouncilRoute, d.handleCouncil)
	d.addRoute(http.MethodPost, v1.CouncilAddRoute, d.handleCouncilAdd)
	d.addRoute(http.MethodPost, v1.CouncilRemoveRoute,
		d.handleCouncilRemove)

	// Multisig execution
	d.addRoute(http.MethodPost, v1.TxSubmitRoute, d.handleTxSubmit)
	d.addRoute(http.MethodPost, v1.TxConfirmRoute, d.handleTxConfirm)
	d.addRoute(http.MethodPost, v1.TxRevokeRoute, d.handleTxRevoke)
	d.addRoute(http.MethodPost, v1.TxExecuteRoute, d.handleTxExecute)
	d.addRoute(http.MethodPost, v1.TxDetailsRoute, d.handleTxDetails)
	d.addRoute(http.MethodGet, v1.TxInventoryRoute, d.handleTxInventory)
	d.addRoute(http.MethodPost, v1.SignerAddRoute, d.handleSignerAdd)
	d.addRoute(http.MethodPost, v1.SignerRemoveRoute, d.handleSignerRemove)
	d.addRoute(http.MethodPost, v1.ThresholdRoute, d.handleThreshold)

	// Capabilities
	d.addRoute(http.MethodPost, v1.CapGrantRoute, d.handleCapGrant)
	d.addRoute(http.MethodPost, v1.CapRevokeRoute, d.handleCapRevoke)
	d.addRoute(http.MethodPost, v1.CapHoldersRoute, d.handleCapHolders)

	// Identity admin
	d.addRoute(http.MethodPost, v1.IdentityNewRoute, d.handleIdentityNew)
	d.addRoute(http.MethodPost, v1.WeightSetRoute, d.handleWeightSet)
}

// setupPipeline wires the pipeline components together: the governance
// engine feeds the registry through the proposal source, the compliance
// engine writes back into the registry through the status port, and the
// multisig executes against the external caller.
func (d *amanahd) setupPipeline() error {
	var err error
	d.events = events.NewManager()
	d.identities = soulbound.NewMemRegistry()
	d.ledger = soulbound.NewMemLedger()

	d.clock, err = setupClock(d.db,
		time.Duration(d.cfg.BlockInterval)*time.Second)
	if err != nil {
		return err
	}

	admins := identitiesFromStrings(d.cfg.Admins)
	for _, id := range admins {
		d.identities.Register(id)
	}

	d.governance, err = governance.New(d.clock, d.identities, d.ledger,
		d.events, d.db, governance.Params{
			ProposalThreshold: d.cfg.ProposalThreshold,
			VotingDelay:       d.cfg.VotingDelay,
			VotingPeriod:      d.cfg.VotingPeriod,
			Quorum:            d.cfg.Quorum,
		}, admins)
	if err != nil {
		return errors.WithMessage(err, "new governance")
	}
	d.registry, err = registry.New(d.governance, d.events, d.db, admins,
		identitiesFromStrings(d.cfg.Executors))
	if err != nil {
		return errors.WithMessage(err, "new registry")
	}
	d.compliance, err = compliance.New(d.registry.StatusPort(), d.events,
		d.db, admins, identitiesFromStrings(d.cfg.Council))
	if err != nil {
		return errors.WithMessage(err, "new compliance")
	}
	d.multisig, err = multisig.New(execCaller{}, d.events, d.db,
		identitiesFromStrings(d.cfg.Signers), d.cfg.SigThreshold, admins)
	if err != nil {
		return errors.WithMessage(err, "new multisig")
	}

	return nil
}

// identitiesFromStrings converts config identity strings.
func identitiesFromStrings(ss []string) []gov.Identity {
	ids := make([]gov.Identity, 0, len(ss))
	for _, s := range ss {
		ids = append(ids, gov.Identity(s))
	}
	return ids
}

func _main() error {
	// Load configuration and parse command line. This function also
	// initializes logging and configures it accordingly.
	cfg, err := loadConfig()
	if err != nil {
		return errors.WithMessage(err, "could not load configuration")
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	log.Infof("Version : %v", cfg.Version)
	log.Infof("Home dir: %v", cfg.HomeDir)

	// Create the data directory in case it does not exist.
	err = os.MkdirAll(cfg.DataDir, 0700)
	if err != nil {
		return err
	}

	// Setup the store. The store is encrypted at rest; the key is
	// created on first startup.
	db, err := localdb.New(cfg.HomeDir, cfg.DataDir)
	if err != nil {
		return errors.WithMessage(err, "new localdb")
	}

	// Setup application context
	d := &amanahd{
		cfg: cfg,
		db:  db,
	}
	err = d.setupPipeline()
	if err != nil {
		return err
	}
	d.setupEventListeners()
	d.setupRoutes()

	// Bind to the listen address and pass our router in
	listenC := make(chan error)
	go func() {
		log.Infof("Listen: %v", cfg.Listen)
		listenC <- http.ListenAndServe(cfg.Listen, d.router)
	}()

	// Tell user we are ready to go.
	log.Infof("Start of day")

	// Setup OS signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigs:
		log.Infof("Terminating with %v", sig)
	case err := <-listenC:
		log.Errorf("%v", err)
	}

	err = db.Close()
	if err != nil {
		log.Errorf("Close store: %v", err)
	}

	log.Infof("Exiting")

	return nil
}

func main() {
	err := _main()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
