//go:build windows

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"

	"golang.org/x/sys/windows"

	"sql-bridge/internal/platform/autostart"
)

const windowTitle = "SQL Bridge"

var openGLFallbackOnce sync.Once

func uiStartupGuard() error {
	isService, err := autostart.IsWindowsService()
	if err == nil && isService {
		return errors.New("sql-bridge UI cannot run as a Windows Service or in a non-interactive session. Launch sql-bridge.exe from the desktop instead")
	}
	return nil
}

func uiStartupAlert(err error) {
	if err == nil {
		return
	}
	showMessage(err.Error())
	_, _ = fmt.Fprintln(os.Stderr, err.Error())
}

// onOpenGLFailure replaces the GUI with the headless prompt in a new console.
func onOpenGLFailure() {
	openGLFallbackOnce.Do(func() {
		showMessage("OpenGL is not available on this machine (likely Microsoft Hyper-V Video or Basic Display Adapter).\n" +
			"The GUI cannot start. A console window will open with the SQL prompt instead.")
		_ = launchHeadlessConsole()
		os.Exit(1)
	})
}

func showMessage(msg string) {
	_, _ = windows.MessageBox(0, windows.StringToUTF16Ptr(msg), windows.StringToUTF16Ptr(windowTitle), windows.MB_ICONERROR)
}

func launchHeadlessConsole() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command("cmd.exe", "/k", fmt.Sprintf("\"%s\" --headless", filepath.Clean(exe)))
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_CONSOLE,
	}
	return cmd.Start()
}
