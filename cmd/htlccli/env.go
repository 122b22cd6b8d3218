package main

import (
	"os"
)

// Flag defaults read from the environment. All variables use the HTLC_ prefix.
const (
	// envProgramID is the default of every -program flag.
	envProgramID = "HTLC_PROGRAM_ID"
	// envGenesis is the default of the simulate -genesis flag.
	envGenesis = "HTLC_GENESIS"
)

// env returns the value of the environment variable name when it is set,
// even to an empty string, and fallback otherwise.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}
