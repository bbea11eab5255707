package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const AppName = "sql-bridge"

// HomeEnv overrides the machine-wide directory, mainly for tests and
// non-root installs.
const HomeEnv = "SQLBRIDGE_HOME"

func baseDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	switch runtime.GOOS {
	case "windows":
		programData := os.Getenv("PROGRAMDATA")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, AppName), nil
	case "linux":
		return filepath.Join("/etc", AppName), nil
	case "darwin":
		return filepath.Join("/Library", "Application Support", AppName), nil
	default:
		return "", errors.New("unsupported OS for machine-wide config")
	}
}

func ConfigFilePath() (string, error) {
	return join("config.yaml")
}

func LoggerFilePath() (string, error) {
	return join("server.log")
}

func UILogFilePath() (string, error) {
	return join("ui.log")
}

func SecretsDir() (string, error) {
	return join("secrets")
}

// HistoryFilePath is per user, unlike the other paths.
func HistoryFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".sql_bridge_history"
	}
	return filepath.Join(home, ".sql_bridge_history")
}

func join(name string) (string, error) {
	dir, err := baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
