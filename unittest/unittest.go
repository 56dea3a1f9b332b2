// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package unittest provides helpers that are shared between the package unit
// tests.
package unittest

import (
	"reflect"

	"github.com/pkg/errors"
)

// TestGenericConstMap tests a map of a constant type and verifies that the
// constant numbers are consecutive and represented in the human readable
// map. This function is for unit tests only.
func TestGenericConstMap(constMap interface{}, last uint64) error {
	if reflect.TypeOf(constMap).Kind() != reflect.Map {
		return errors.Errorf("constMap not a map: %T", constMap)
	}
	val := reflect.ValueOf(constMap)

	leftover := make(map[uint64]struct{}, len(val.MapKeys()))
	for i := uint64(0); i < uint64(len(val.MapKeys())); i++ {
		leftover[i] = struct{}{}
	}
	for _, mapKey := range val.MapKeys() {
		var key uint64
		switch mapKey.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
			reflect.Uint64:
			key = mapKey.Uint()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
			reflect.Int64:
			key = uint64(mapKey.Int())
		default:
			return errors.Errorf("unsupported key type: %v",
				mapKey.Kind())
		}
		delete(leftover, key)
	}
	if len(leftover) != 0 {
		return errors.Errorf("leftover length not 0: %v", leftover)
	}
	if len(val.MapKeys()) != int(last) {
		return errors.Errorf("someone added a map code without adding "+
			"a human readable description. Got %v, want %v",
			len(val.MapKeys()), last)
	}

	return nil
}
