//go:build !debug

package main

func setupProfiling() {}

func stopProfiling() {}
