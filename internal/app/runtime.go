package app

import (
	"os"
	"strconv"
	"sync/atomic"
)

const testModeEnv = "COSTBOOK_TEST_MODE"

var testMode atomic.Pointer[bool]

// InTestMode reports whether COSTBOOK_TEST_MODE is set. Binaries exit early in
// test mode so package tests can import them without dialing Postgres or Redis.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	return RefreshTestMode()
}

// RefreshTestMode re-reads the environment and returns the new value.
func RefreshTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(testModeEnv))
	on = err == nil && on
	testMode.Store(&on)
	return on
}
