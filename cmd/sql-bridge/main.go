package main

import (
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"sql-bridge/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	uiLog := newUILogger()
	defer uiLog.Close()

	if handled, err := runHeadless(uiLog); handled {
		if err != nil {
			uiLog.Error("headless failed", err)
			fmt.Fprintln(os.Stderr, "error:", err)
			uiLog.Close()
			os.Exit(1)
		}
		return
	}

	if err := uiStartupGuard(); err != nil {
		uiStartupAlert(err)
		os.Exit(1)
	}

	// the GL driver reports a missing OpenGL context through the std logger
	log.SetOutput(newLogWatcher(os.Stderr, onOpenGLFailure))

	a := app.New()
	w := a.NewWindow("SQL Bridge")

	cfg, err := config.LoadOrDefault()
	c := newConsole(cfg, uiLog)
	c.win = w
	content := c.build()
	if err != nil {
		c.status.SetText("Error loading config: " + err.Error())
	}

	w.SetContent(content)
	w.SetCloseIntercept(func() {
		if c.bridge.Connected() {
			_ = c.bridge.Close()
		}
		w.Close()
	})
	w.Resize(fyne.NewSize(960, 720))
	w.ShowAndRun()
}
