package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"sql-bridge/internal/bridge"
	"sql-bridge/internal/config"
	"sql-bridge/internal/db"
	"sql-bridge/internal/logger"
	"sql-bridge/internal/mcp"
	"sql-bridge/internal/platform/autostart"
	"sql-bridge/internal/platform/paths"
	"sql-bridge/internal/secrets"
)

type optionalString struct {
	set   bool
	value string
}

func (o *optionalString) String() string {
	return o.value
}

func (o *optionalString) Set(v string) error {
	o.set = true
	o.value = v
	return nil
}

type optionalInt struct {
	set   bool
	value int
}

func (o *optionalInt) String() string {
	if !o.set {
		return ""
	}
	return strconv.Itoa(o.value)
}

func (o *optionalInt) Set(v string) error {
	if v == "" {
		return errors.New("value required")
	}
	val, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	o.set = true
	o.value = val
	return nil
}

type optionalBool struct {
	set   bool
	value bool
}

func (o *optionalBool) String() string {
	if !o.set {
		return ""
	}
	return strconv.FormatBool(o.value)
}

func (o *optionalBool) Set(v string) error {
	if v == "" {
		v = "true"
	}
	val, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	o.set = true
	o.value = val
	return nil
}

func (o *optionalBool) IsBoolFlag() bool {
	return true
}

func hasHeadlessFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--headless" || arg == "--cli" {
			return true
		}
	}
	return false
}

func newBearerToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// headlessOptions are the parsed command line of headless mode.
type headlessOptions struct {
	show        bool
	generateTok bool
	testConn    bool
	installSvc  bool
	startSvc    bool
	stopSvc     bool
	oneShot     string
	exportPath  string
	historyPath string
	mcpStdio    bool
	clearPass   bool

	apiListen      optionalString
	bearerToken    optionalString
	debug          optionalBool
	connectOnStart optionalBool
	dbDriver       optionalString
	dbHost         optionalString
	dbPort         optionalInt
	dbUser         optionalString
	dbName         optionalString
	dbPassword     optionalString
}

func parseHeadless(args []string, out io.Writer) (headlessOptions, error) {
	var o headlessOptions
	fs := flag.NewFlagSet("sql-bridge", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.Bool("headless", false, "Run without GUI (CLI mode)")
	fs.Bool("cli", false, "Alias for --headless")
	fs.BoolVar(&o.show, "show", false, "Print current config summary")
	fs.BoolVar(&o.generateTok, "generate-token", false, "Generate a new bearer token and print it")
	fs.BoolVar(&o.testConn, "test-connection", false, "Test DB connection using current config")
	fs.BoolVar(&o.installSvc, "install-service", false, "Register sql-bridged as an auto-start Windows service")
	fs.BoolVar(&o.startSvc, "start-service", false, "Start the sql-bridged Windows service")
	fs.BoolVar(&o.stopSvc, "stop-service", false, "Stop the sql-bridged Windows service")
	fs.StringVar(&o.oneShot, "c", "", "Execute one SQL statement and exit")
	fs.StringVar(&o.exportPath, "export", "", "Write the rows returned by -c to this .xlsx file")
	fs.StringVar(&o.historyPath, "history", paths.HistoryFilePath(), "History file path")
	fs.BoolVar(&o.mcpStdio, "mcp-stdio", false, "Serve the bridge as MCP tools on stdin/stdout")

	fs.Var(&o.apiListen, "api-listen", "API listen address (host:port)")
	fs.Var(&o.debug, "debug", "Enable debug logging (true/false)")
	fs.Var(&o.bearerToken, "bearer-token", "Bearer token to store in config")
	fs.Var(&o.connectOnStart, "connect-on-start", "Daemon connects at startup (true/false)")
	fs.Var(&o.dbDriver, "db-driver", "DB driver ("+strings.Join(config.DBDriverOptions(), ", ")+")")
	fs.Var(&o.dbHost, "db-host", "DB host (file path for sqlite)")
	fs.Var(&o.dbPort, "db-port", "DB port (1-65535)")
	fs.Var(&o.dbUser, "db-user", "DB user")
	fs.Var(&o.dbName, "db-name", "DB database name (empty to unset)")
	fs.Var(&o.dbPassword, "db-password", "DB password (stored securely)")
	fs.BoolVar(&o.clearPass, "clear-db-password", false, "Delete the stored DB password")

	return o, fs.Parse(args)
}

// apply copies the config flags into cfg and reports whether anything
// changed.
func (o headlessOptions) apply(cfg *config.Config) (bool, error) {
	changed := false
	if o.apiListen.set {
		cfg.APIListen = strings.TrimSpace(o.apiListen.value)
		changed = true
	}
	if o.debug.set {
		cfg.Debug = o.debug.value
		changed = true
	}
	if o.bearerToken.set {
		cfg.BearerToken = strings.TrimSpace(o.bearerToken.value)
		changed = true
	}
	if o.connectOnStart.set {
		cfg.ConnectOnStart = o.connectOnStart.value
		changed = true
	}
	if o.dbDriver.set {
		val := config.DBDriver(strings.ToLower(strings.TrimSpace(o.dbDriver.value)))
		if !config.IsKnownDriver(val) {
			return false, fmt.Errorf("invalid db-driver: %q", o.dbDriver.value)
		}
		cfg.DB.Driver = val
		changed = true
	}
	if o.dbHost.set {
		cfg.DB.Host = strings.TrimSpace(o.dbHost.value)
		changed = true
	}
	if o.dbPort.set {
		if o.dbPort.value <= 0 || o.dbPort.value > 65535 {
			return false, fmt.Errorf("invalid db-port: %d", o.dbPort.value)
		}
		cfg.DB.Port = config.IntPtr(o.dbPort.value)
		changed = true
	}
	if o.dbUser.set {
		cfg.DB.Username = strings.TrimSpace(o.dbUser.value)
		changed = true
	}
	if o.dbName.set {
		cfg.DB.Database = nil
		if name := strings.TrimSpace(o.dbName.value); name != "" {
			cfg.DB.Database = config.StringPtr(name)
		}
		changed = true
	}
	return changed, nil
}

// runHeadless handles --headless. Config flags are saved first; with no
// other action requested it opens the SQL prompt.
func runHeadless(log logger.LoggerService) (bool, error) {
	if !hasHeadlessFlag(os.Args[1:]) {
		return false, nil
	}
	out := os.Stdout

	o, err := parseHeadless(os.Args[1:], out)
	if err != nil {
		return true, err
	}
	log.Info("headless start")

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return true, err
	}

	changed, err := o.apply(&cfg)
	if err != nil {
		return true, err
	}

	if o.generateTok {
		token, err := newBearerToken()
		if err != nil {
			return true, err
		}
		cfg.BearerToken = token
		changed = true
		fmt.Fprintf(out, "Bearer token: %s\n", token)
	}

	if o.dbPassword.set {
		key := secrets.DBPasswordKey(string(cfg.DB.Driver), cfg.DB.Host)
		if err := secrets.Set(key, []byte(o.dbPassword.value)); err != nil {
			return true, fmt.Errorf("failed to save db password: %w", err)
		}
		fmt.Fprintln(out, "DB password saved.")
	}

	if o.clearPass {
		if err := secrets.Delete(secrets.DBPasswordKey(string(cfg.DB.Driver), cfg.DB.Host)); err != nil {
			return true, fmt.Errorf("failed to delete db password: %w", err)
		}
		fmt.Fprintln(out, "DB password deleted.")
	}

	if changed {
		if err := config.Save(cfg); err != nil {
			return true, err
		}
		fmt.Fprintln(out, "Config saved.")
	}

	if o.show {
		printConfigSummary(out, cfg)
	}

	if err := o.serviceActions(out); err != nil {
		return true, err
	}

	acted := changed || o.show || o.generateTok || o.dbPassword.set || o.clearPass || o.installSvc || o.startSvc || o.stopSvc
	if !o.testConn && o.oneShot == "" && !o.mcpStdio && acted {
		return true, nil
	}

	dbCfg := cfg.DB
	if o.dbPassword.set {
		dbCfg.Password = o.dbPassword.value
	}
	dbCfg.Password, err = secrets.DBPassword(dbCfg)
	if err != nil {
		return true, err
	}

	if o.testConn {
		ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		if err := db.TestConnection(ctx, dbCfg); err != nil {
			return true, err
		}
		fmt.Fprintln(out, "Connection OK.")
		if o.oneShot == "" && !o.mcpStdio {
			return true, nil
		}
	}

	if o.mcpStdio {
		return true, runMCPStdio(log, dbCfg)
	}
	return true, runPrompt(log, dbCfg, o)
}

func (o headlessOptions) serviceActions(out io.Writer) error {
	if o.installSvc {
		exe, err := daemonExecutable()
		if err != nil {
			return err
		}
		created, err := autostart.Install(autostart.DaemonServiceName, exe)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintln(out, "Service installed.")
		} else {
			fmt.Fprintln(out, "Service updated.")
		}
	}
	if o.stopSvc {
		if err := autostart.Stop(autostart.DaemonServiceName, 20*time.Second); err != nil {
			return err
		}
		fmt.Fprintln(out, "Service stopped.")
	}
	if o.startSvc {
		if err := autostart.Start(autostart.DaemonServiceName); err != nil {
			return err
		}
		fmt.Fprintln(out, "Service started.")
	}
	return nil
}

// daemonExecutable is sql-bridged next to this executable.
func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	name := autostart.DaemonServiceName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(exe), name), nil
}

// runPrompt connects and either runs the -c statement or the interactive
// prompt. The connection is closed on the way out.
func runPrompt(log logger.LoggerService, dbCfg config.DBConfig, o headlessOptions) error {
	ctx := context.Background()
	b := bridge.New(log, db.DefaultOptions())
	if err := b.Connect(ctx, dbCfg); err != nil {
		return err
	}
	defer b.Close()

	hist := newHistory(o.historyPath)
	_ = hist.load(2000)
	s := &session{bridge: b, hist: hist, out: os.Stdout}

	if strings.TrimSpace(o.oneShot) != "" {
		if err := s.run(ctx, o.oneShot); err != nil {
			return err
		}
		if o.exportPath != "" {
			return s.export(o.exportPath)
		}
		return nil
	}
	descriptor, _ := b.Descriptor()
	return s.repl(ctx, descriptor)
}

// runMCPStdio serves the MCP tools until stdin closes. The connection is
// opened by the connect tool, which falls back to dbCfg.
func runMCPStdio(log logger.LoggerService, dbCfg config.DBConfig) error {
	b := bridge.New(log, db.DefaultOptions())
	defer func() {
		if b.Connected() {
			_ = b.Close()
		}
	}()

	s := mcp.NewServer(&mcp.ToolDeps{Bridge: b, DefaultDB: dbCfg}, version)
	log.Info("mcp stdio start")
	return mcp.ServeStdio(s)
}

func printConfigSummary(out io.Writer, cfg config.Config) {
	fmt.Fprintln(out, "Config summary:")
	fmt.Fprintf(out, "  API Listen: %s\n", cfg.APIListen)
	fmt.Fprintf(out, "  Debug: %v\n", cfg.Debug)
	if cfg.BearerToken == "" {
		fmt.Fprintln(out, "  Bearer Token: (empty)")
	} else {
		fmt.Fprintf(out, "  Bearer Token: (set, len=%d)\n", len(cfg.BearerToken))
	}
	fmt.Fprintf(out, "  Connect On Start: %v\n", cfg.ConnectOnStart)
	if descriptor, err := db.Descriptor(cfg.DB); err == nil {
		fmt.Fprintf(out, "  DB: %s\n", descriptor)
	} else {
		fmt.Fprintf(out, "  DB: (invalid: %v)\n", err)
	}
	fmt.Fprintf(out, "  DB User: %s\n", cfg.DB.Username)
}
