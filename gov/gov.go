// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package gov contains the types that are shared between the components of
// the governance decision pipeline: the identity type, the height clock, the
// error taxonomy, and the capability tables that each component uses to
// authorize its operations.
package gov

import (
	"sync"
	"time"
)

// Identity uniquely identifies a participant in the governance pipeline.
// Identities are issued by an external identity registry. The zero value is
// not a valid identity.
type Identity string

// IdentityZero is the invalid zero value identity.
const IdentityZero Identity = ""

// Clock provides the best known height of the host ledger. All voting
// windows are expressed as comparisons against this monotonically increasing
// counter. No component ever blocks waiting on a height; callers poll.
type Clock interface {
	// BestHeight returns the current height.
	BestHeight() uint64
}

// ManualClock is a Clock whose height is advanced explicitly. It is used by
// unit tests and by deployments where height updates are driven externally.
type ManualClock struct {
	sync.Mutex
	height uint64
}

// BestHeight satisfies the Clock interface.
func (c *ManualClock) BestHeight() uint64 {
	c.Lock()
	defer c.Unlock()

	return c.height
}

// Advance increases the height by n.
func (c *ManualClock) Advance(n uint64) {
	c.Lock()
	defer c.Unlock()

	c.height += n
}

// SetHeight sets the height to h. Height is monotonic; a value below the
// current height is ignored.
func (c *ManualClock) SetHeight(h uint64) {
	c.Lock()
	defer c.Unlock()

	if h > c.height {
		c.height = h
	}
}

// NewManualClock returns a new ManualClock that starts at the provided
// height.
func NewManualClock(height uint64) *ManualClock {
	return &ManualClock{
		height: height,
	}
}

// TickerClock is a Clock that derives the height from wall clock time. One
// height unit elapses per block interval, starting from the genesis time.
// This stands in for a live chain backend in standalone deployments.
type TickerClock struct {
	genesis  time.Time
	interval time.Duration
}

// BestHeight satisfies the Clock interface.
func (c *TickerClock) BestHeight() uint64 {
	elapsed := time.Since(c.genesis)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed / c.interval)
}

// NewTickerClock returns a new TickerClock.
func NewTickerClock(genesis time.Time, interval time.Duration) *TickerClock {
	return &TickerClock{
		genesis:  genesis,
		interval: interval,
	}
}
