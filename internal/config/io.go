package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"sql-bridge/internal/platform/paths"
)

var ErrNotFound = errors.New("config not found")

const envPrefix = "SQLBRIDGE"

func Load() (Config, error) {
	p, err := paths.ConfigFilePath()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(p)
}

// LoadFrom reads a YAML config file, returning ErrNotFound when it is missing.
func LoadFrom(p string) (Config, error) {
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, ErrNotFound
		}
		return Config{}, err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func LoadOrDefault() (Config, error) {
	cfg, err := Load()

	if err == nil {
		return cfg, nil
	}

	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}

	return Config{}, err
}

// LoadFile reads the config at path through viper so that every key can be
// overridden from the environment, e.g. SQLBRIDGE_DB_PASSWORD or
// SQLBRIDGE_BEARERTOKEN.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("apiListen", def.APIListen)
	v.SetDefault("log.maxSizeMB", def.Log.MaxSizeMB)
	v.SetDefault("log.maxBackups", def.Log.MaxBackups)
	v.SetDefault("log.maxAgeDays", def.Log.MaxAgeDays)
	v.SetDefault("db.driver", string(def.DB.Driver))
	v.SetDefault("db.host", def.DB.Host)
	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{"bearerToken", "debug", "connectOnStart", "log.file", "db.port", "db.database", "db.username", "db.password"} {
		v.SetDefault(key, nil)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return Config{}, ErrNotFound
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func Save(cfg Config) error {
	p, err := paths.ConfigFilePath()
	if err != nil {
		return err
	}
	return SaveTo(p, cfg)
}

// SaveTo writes cfg atomically through a temp file in the target directory.
// Passwords are never written; they belong in the secrets store.
func SaveTo(p string, cfg Config) error {
	dir := filepath.Dir(p)
	errDir := os.MkdirAll(dir, 0o755)

	if errDir != nil {
		return errDir
	}

	cfg.DB.Password = ""
	if len(cfg.Servers) > 0 {
		servers := make([]Server, len(cfg.Servers))
		copy(servers, cfg.Servers)
		for i := range servers {
			servers[i].DB.Password = ""
		}
		cfg.Servers = servers
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.tmp")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	_ = tmp.Chmod(0o600)

	_, writeErr := tmp.Write(out)

	syncErr := tmp.Sync()

	closeErr := tmp.Close()

	if writeErr != nil || syncErr != nil || closeErr != nil {
		_ = os.Remove(tmpName)
		if writeErr != nil {
			return writeErr
		}
		if syncErr != nil {
			return syncErr
		}
		return closeErr
	}

	_ = os.Remove(p)

	errRename := os.Rename(tmpName, p)

	if errRename != nil {
		_ = os.Remove(tmpName)
		return errRename
	}

	return nil

}

// Validate checks the settings the daemon needs before it can serve.
func (c Config) Validate() error {
	if err := validateListenAddr(strings.TrimSpace(c.APIListen)); err != nil {
		return err
	}
	if strings.TrimSpace(c.BearerToken) == "" {
		return errors.New("bearerToken is required")
	}
	if c.DB.Driver != "" && !IsKnownDriver(c.DB.Driver) {
		return fmt.Errorf("unsupported db.driver: %q", c.DB.Driver)
	}
	return nil
}

func validateListenAddr(addr string) error {
	if addr == "" {
		return errors.New("apiListen is required")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.New("apiListen must be in host:port format")
	}
	if host == "" {
		return errors.New("apiListen host is required")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return errors.New("apiListen port is invalid")
	}

	return nil
}
