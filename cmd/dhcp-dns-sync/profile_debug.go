//go:build debug

package main

import (
	"fmt"
	"os"
	"runtime/pprof"
)

// CPUProfileEnv names the file a debug build writes its CPU profile to.
const CPUProfileEnv = "SYNC_CPUPROFILE"

var profileFile *os.File

func setupProfiling() {
	path := os.Getenv(CPUProfileEnv)
	if path == "" {
		return
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cpu profile: %v\n", err)
		return
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		fmt.Fprintf(os.Stderr, "cpu profile: %v\n", err)
		f.Close()
		return
	}
	profileFile = f
}

func stopProfiling() {
	if profileFile != nil {
		pprof.StopCPUProfile()
		profileFile.Close()
	}
}
