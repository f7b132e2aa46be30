// finman is a single-user personal finance ledger. It records income and
// expense transactions, keeps per-category budgets and reports balance,
// spending by category and budget versus actual spending, either on the
// terminal or through a local JSON API.
//
// Usage:
//
//	finman [flags] income <amount> <category> <description...>
//	finman [flags] expense <amount> <category> <description...>
//	finman [flags] budget <category> <amount>
//	finman [flags] balance | spending | budgets | list
//	finman [flags] serve
//
// Configuration comes from the environment (optionally a .env file);
// flags override it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"finman/internal/backend"
	"finman/internal/cli"
	"finman/internal/config"
	"finman/internal/log"
	"finman/internal/services"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// usageError is a command-line mistake; it exits with status 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }
func (e *usageError) ExitCode() int { return 2 }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

type options struct {
	dataPath string
	backend  string
	logLevel string
	addr     string
	json     bool
	help     bool
}

func (o *options) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.dataPath, "data", "", "ledger location: JSON file or SQLite database, by backend (env DATA_FILE / SQLITE_DB_PATH)")
	fs.StringVar(&o.backend, "backend", "", "storage backend: json or sqlite (env DATA_BACKEND)")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error (env LOG_LEVEL)")
	fs.StringVar(&o.addr, "addr", "", "listen address for serve, loopback only (env HTTP_ADDR)")
	fs.BoolVar(&o.json, "json", false, "print results as JSON")
	fs.BoolVarP(&o.help, "help", "h", false, "show help")
}

// apply lets flags win over the environment.
func (o *options) apply(cfg *config.Config) {
	if o.backend != "" {
		cfg.DataBackend = o.backend
	}
	if o.dataPath != "" {
		if cfg.DataBackend == config.BackendSQLite {
			cfg.SQLiteDBPath = o.dataPath
		} else {
			cfg.DataFile = o.dataPath
		}
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.addr != "" {
		cfg.HTTPAddr = o.addr
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := pflag.NewFlagSet("finman", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.register(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, fs)
			return nil
		}
		return &usageError{msg: err.Error()}
	}
	if opts.help {
		printHelp(stderr, fs)
		return nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printHelp(stderr, fs)
		return usagef("missing command")
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		return usagef("unknown command %q", rest[0])
	}
	if err := cmd.checkArgs(rest[1:]); err != nil {
		return err
	}

	if err := cli.LoadEnvFile(); err != nil {
		return err
	}
	cfg, err := cli.LoadAndValidateConfig(opts.apply)
	if err != nil {
		return err
	}
	logger, err := cli.SetupLogger(cfg, stderr)
	if err != nil {
		return err
	}
	logger = logger.WithComponent(log.ComponentCLI)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := res.Cleanup(); cerr != nil {
			logger.Warn("Cleanup failed", log.FieldError, cerr)
		}
	}()

	out := newOutput(stdout, stderr, opts.json)
	if err := load(ctx, res.Service, out); err != nil {
		return err
	}

	return cmd.run(ctx, &env{
		cfg:    cfg,
		svc:    res.Service,
		out:    out,
		logger: logger,
	}, rest[1:])
}

// load reads the ledger and tells the user about anything it had to repair.
// Only I/O failures are fatal.
func load(ctx context.Context, svc *services.LedgerService, out *output) error {
	res, err := svc.Load(ctx)
	if err != nil {
		return err
	}
	if res.Recovered != nil {
		out.warn("Data file was corrupted; starting with an empty ledger (%v)", res.Recovered.Err)
	}
	if n := len(res.Skipped); n > 0 {
		out.warn("Skipped %d unreadable record(s); the next change will save the ledger without them", n)
	}
	if res.SaveErr != nil {
		out.warn("Could not write the new ledger: %v", res.SaveErr)
	}
	return nil
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `finman: personal finance ledger.

Usage:
  finman [flags] <command> [arguments]

Commands:
  income <amount> <category> <description...>   record income dated today
  expense <amount> <category> <description...>  record an expense dated today
  budget <category> <amount>                    set or replace a category budget
  balance                                       total income, expenses and balance
  spending                                      expenses by category
  budgets                                       budget versus actual spending
  list                                          all transactions, newest first
  serve                                         run the JSON API on a loopback address

Flags:
%s`, fs.FlagUsages())
}
