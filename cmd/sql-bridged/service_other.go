//go:build !windows

package main

func runAsService(_ *serverApp) bool { return false }
