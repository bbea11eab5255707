//go:build !windows

package main

import (
	"fmt"
	"os"
)

func uiStartupGuard() error { return nil }

func uiStartupAlert(err error) {
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
	}
}

// onOpenGLFailure only reports: without a display there is nothing to
// fall back to, and --headless is the way in.
func onOpenGLFailure() {
	_, _ = fmt.Fprintln(os.Stderr, "no OpenGL context available; run with --headless for the SQL prompt")
}
