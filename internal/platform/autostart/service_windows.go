//go:build windows

package autostart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

const (
	pollInterval = 300 * time.Millisecond
	startTimeout = 30 * time.Second
	stopTimeout  = 10 * time.Second
)

func IsWindowsService() (bool, error) {
	return svc.IsWindowsService()
}

// RunService blocks until the service manager stops the app or the app
// fails on its own.
func RunService(name string, app ServiceApp) error {
	return svc.Run(name, &handler{app: app})
}

type handler struct {
	app ServiceApp
}

func (h *handler) Execute(_ []string, r <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	const accepts = svc.AcceptStop | svc.AcceptShutdown
	status <- svc.Status{State: svc.StartPending}

	if err := h.app.Start(); err != nil {
		status <- svc.Status{State: svc.Stopped}
		return false, 1
	}
	status <- svc.Status{State: svc.Running, Accepts: accepts}

	for {
		select {
		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				status <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				h.stop(status)
				return false, 0
			}
		case err := <-h.app.Errors():
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				if log := h.app.Logger(); log != nil {
					log.Error("server stopped", err)
				}
			}
			h.stop(status)
			return false, 1
		}
	}
}

func (h *handler) stop(status chan<- svc.Status) {
	status <- svc.Status{State: svc.StopPending}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	h.app.Stop(ctx)
	status <- svc.Status{State: svc.Stopped}
}

// Install registers exePath as an auto-start service, or points an existing
// registration at exePath. created reports whether the service was new.
func Install(name, exePath string) (created bool, err error) {
	if name == "" || exePath == "" {
		return false, errors.New("service name and executable path are required")
	}
	absPath, err := filepath.Abs(exePath)
	if err != nil {
		return false, err
	}

	m, err := mgr.Connect()
	if err != nil {
		return false, err
	}
	defer m.Disconnect()

	s, err := m.OpenService(name)
	if errors.Is(err, windows.ERROR_SERVICE_DOES_NOT_EXIST) {
		s, err = m.CreateService(name, absPath, mgr.Config{
			StartType:   mgr.StartAutomatic,
			DisplayName: name,
			Description: "SQL bridge HTTP API",
		})
		if err != nil {
			return false, err
		}
		s.Close()
		return true, nil
	}
	if err != nil {
		return false, err
	}
	defer s.Close()

	binaryPath, err := syscall.UTF16PtrFromString(syscall.EscapeArg(absPath))
	if err != nil {
		return false, err
	}
	err = windows.ChangeServiceConfig(s.Handle, windows.SERVICE_NO_CHANGE, mgr.StartAutomatic,
		windows.SERVICE_NO_CHANGE, binaryPath, nil, nil, nil, nil, nil, nil)
	return false, err
}

func Start(name string) error {
	return withService(name, func(s *mgr.Service) error {
		if st, err := s.Query(); err == nil && (st.State == svc.Running || st.State == svc.StartPending) {
			return waitFor(s, svc.Running, startTimeout)
		}
		if err := s.Start(); err != nil && !errors.Is(err, windows.ERROR_SERVICE_ALREADY_RUNNING) {
			return err
		}
		return waitFor(s, svc.Running, startTimeout)
	})
}

func Stop(name string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return withService(name, func(s *mgr.Service) error {
		if st, err := s.Query(); err == nil && (st.State == svc.Stopped || st.State == svc.StopPending) {
			return waitFor(s, svc.Stopped, timeout)
		}
		if _, err := s.Control(svc.Stop); err != nil && !errors.Is(err, windows.ERROR_SERVICE_NOT_ACTIVE) {
			return err
		}
		return waitFor(s, svc.Stopped, timeout)
	})
}

func withService(name string, fn func(s *mgr.Service) error) error {
	if name == "" {
		return errors.New("service name is required")
	}
	m, err := mgr.Connect()
	if err != nil {
		return err
	}
	defer m.Disconnect()

	s, err := m.OpenService(name)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func waitFor(s *mgr.Service, want svc.State, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		st, err := s.Query()
		if err != nil {
			return err
		}
		if st.State == want {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for service state %d (current %d)", want, st.State)
		}
		time.Sleep(pollInterval)
	}
}
