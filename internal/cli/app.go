// Package cli implements the budget command line: argument parsing, storage
// selection and the text rendering of service results.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"budget-tracker/internal/config"
	"budget-tracker/internal/database"
	"budget-tracker/internal/dto"
	apierrors "budget-tracker/internal/errors"
	"budget-tracker/internal/logging"
	"budget-tracker/internal/models"
	"budget-tracker/internal/repositories"
	"budget-tracker/internal/server"
	"budget-tracker/internal/services"

	"github.com/shopspring/decimal"
)

const (
	programName      = "budget"
	defaultSeedCount = 50
	seedRangeDays    = 90
)

type command struct {
	name    string
	usage   string
	summary string
	run     func(a *App, args []string) error
}

var commands = []command{
	{"add-income", "add-income AMOUNT CATEGORY [--description D] [--date YYYY-MM-DD]", "Record an income", addIncome},
	{"add-expense", "add-expense AMOUNT CATEGORY [--description D] [--date YYYY-MM-DD]", "Record an expense", addExpense},
	{"list", "list [--type income|expense] [--category C] [--from DATE] [--to DATE]", "List transactions", listTransactions},
	{"summary", "summary", "Show income and expense per category", showSummary},
	{"balance", "balance", "Show the current balance", showBalance},
	{"seed", "seed [--count N] [--seed S]", "Append generated demo transactions", seedTransactions},
	{"serve", "serve [--addr HOST:PORT]", "Run the read-only report server", serve},
}

// App holds everything a command needs once storage has been opened
type App struct {
	cfg     *config.Config
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
	metrics *services.PrometheusMetrics
	service services.BudgetServiceInterface
	today   func() models.Date

	newGenerator func(seed uint64) services.TransactionGeneratorInterface
}

// Run executes the command line and returns the process exit status
func Run(args []string, stdout, stderr io.Writer) int {
	if err := run(args, stdout, stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return apierrors.ExitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apierrors.ExitCodeFor(err)
	}
	return apierrors.ExitOK
}

func run(args []string, stdout, stderr io.Writer) error {
	if err := config.LoadEnvFile(); err != nil {
		return err
	}
	cfg := config.Load()

	global := flag.NewFlagSet(programName, flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { printUsage(stderr) }
	dataFile := global.String("data-file", "", "path of the transaction store (overrides BUDGET_DATA_FILE or BUDGET_SQLITE_PATH)")
	backend := global.String("backend", "", "storage backend: json or sqlite")
	if err := global.Parse(args); err != nil {
		return usageError(err)
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return apierrors.NewValidationError(apierrors.ValidationInvalidArgument, "", "no command given")
	}

	name, cmdArgs := rest[0], rest[1:]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage(stdout)
		return nil
	}
	cmd, ok := lookup(name)
	if !ok {
		printUsage(stderr)
		return apierrors.NewValidationError(apierrors.ValidationInvalidArgument, "", fmt.Sprintf("unknown command %q", name))
	}

	if *backend != "" {
		cfg.Storage.Backend = strings.ToLower(*backend)
	}
	if *dataFile != "" {
		if cfg.Storage.Backend == config.BackendSQLite {
			cfg.Storage.SQLitePath = *dataFile
		} else {
			cfg.Storage.DataFile = *dataFile
		}
	}
	if err := cfg.Validate(); err != nil {
		return apierrors.NewValidationError(apierrors.ValidationInvalidArgument, "", err.Error())
	}

	logger := logging.New(cfg.Log, stderr)
	metrics := services.NewPrometheusMetrics()

	repo, closeStore, err := openRepository(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close storage", "error", err)
		}
	}()

	app := &App{
		cfg:     cfg,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger,
		metrics: metrics,
		service: services.NewBudgetService(repo, metrics, logging.WithComponent(logger, "service"), cfg.Storage.Backend),
		today:   models.Today,
		newGenerator: func(seed uint64) services.TransactionGeneratorInterface {
			return services.NewTransactionGenerator(seed)
		},
	}

	cmdErr := cmd.run(app, cmdArgs)

	if path := cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Warn("failed to write metrics textfile", "path", path, "error", err)
		}
	}

	return cmdErr
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [--data-file PATH] [--backend json|sqlite] <command> [options]\n\n", programName)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.summary)
		fmt.Fprintf(w, "  %-12s   %s %s\n", "", programName, c.usage)
	}
	fmt.Fprintf(w, "  %-12s %s\n", "help", "Show this help message")
}

// openRepository selects the storage backend. The returned closer is always non-nil.
func openRepository(cfg *config.Config, logger *slog.Logger, metrics services.MetricsRecorderInterface) (repositories.TransactionRepositoryInterface, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := database.Initialize(cfg.Storage.SQLitePath, logging.WithComponent(logger, "database"))
		if err != nil {
			return nil, noop, apierrors.NewIOError(apierrors.StorageUnavailable, err)
		}
		return repositories.NewSQLiteTransactionRepository(db.DB, cfg.Storage.SQLitePath, db.HealthCheck), db.Close, nil
	default:
		var opts []repositories.LoadOption
		if cfg.Storage.SkipMalformed {
			opts = append(opts, repositories.WithSkipMalformed(services.MalformedEntryReporter(logger, metrics)))
		}
		return repositories.NewJSONFileRepository(cfg.Storage.DataFile, opts...), noop, nil
	}
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// parseInterspersed lets flags follow positional arguments, as in
// "add-income 1200 salary --date 2024-01-31".
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return apierrors.NewValidationError(apierrors.ValidationInvalidArgument, "", err.Error())
}

func addIncome(a *App, args []string) error {
	return a.add(models.TransactionTypeIncome, args)
}

func addExpense(a *App, args []string) error {
	return a.add(models.TransactionTypeExpense, args)
}

func (a *App) add(typ models.TransactionType, args []string) error {
	fs := a.newFlagSet("add-" + typ.String())
	description := fs.String("description", "", "optional description")
	date := fs.String("date", "", "transaction date (YYYY-MM-DD), defaults to today")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return usageError(err)
	}
	if len(positional) != 2 {
		return apierrors.NewValidationError(apierrors.ValidationInvalidArgument, "",
			fmt.Sprintf("add-%s expects AMOUNT and CATEGORY, got %d argument(s)", typ, len(positional)))
	}

	amount, err := decimal.NewFromString(positional[0])
	if err != nil {
		return apierrors.NewValidationError(apierrors.ValidationInvalidAmount, "amount",
			fmt.Sprintf("invalid amount %q", positional[0]))
	}

	day := a.today()
	if *date != "" {
		if day, err = models.ParseDate(*date); err != nil {
			return apierrors.NewValidationError(apierrors.ValidationInvalidDate, "date", err.Error())
		}
	}

	tx, err := a.service.AddTransaction(models.TransactionInput{
		Type:        typ,
		Amount:      amount,
		Category:    positional[1],
		Description: *description,
		Date:        day,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Added %s %s (%s)\n", tx.Type, tx.Amount.StringFixed(models.AmountPlaces), tx.Category)
	return nil
}

func listTransactions(a *App, args []string) error {
	fs := a.newFlagSet("list")
	var query dto.TransactionFilters
	fs.StringVar(&query.Type, "type", "", "only income or expense")
	fs.StringVar(&query.Category, "category", "", "only this category (case-insensitive)")
	fs.StringVar(&query.From, "from", "", "earliest date, inclusive (YYYY-MM-DD)")
	fs.StringVar(&query.To, "to", "", "latest date, inclusive (YYYY-MM-DD)")
	if _, err := parseInterspersed(fs, args); err != nil {
		return usageError(err)
	}

	filter, err := query.ToFilter()
	if err != nil {
		return err
	}

	report, err := a.service.Report(filter)
	if err != nil {
		return err
	}

	if len(report.Transactions) == 0 {
		if filter.IsEmpty() {
			fmt.Fprintln(a.stdout, emptyListMessage)
		} else {
			fmt.Fprintln(a.stdout, noMatchMessage)
		}
		return nil
	}

	if err := writeTransactions(a.stdout, report.Transactions); err != nil {
		return err
	}
	if !filter.IsEmpty() {
		fmt.Fprintf(a.stdout, "\nBalance of listed transactions: %s\n", report.Balance.StringFixed(models.AmountPlaces))
	}
	return nil
}

func showSummary(a *App, args []string) error {
	if err := noArguments(a, "summary", args); err != nil {
		return err
	}

	summary, err := a.service.Summary()
	if err != nil {
		return err
	}
	if len(summary) == 0 {
		fmt.Fprintln(a.stdout, emptySummaryMessage)
		return nil
	}
	return writeSummary(a.stdout, summary)
}

func showBalance(a *App, args []string) error {
	if err := noArguments(a, "balance", args); err != nil {
		return err
	}

	balance, err := a.service.Balance()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Current balance: %s\n", balance.StringFixed(models.AmountPlaces))
	return nil
}

func noArguments(a *App, name string, args []string) error {
	return noArgumentsAfter(a.newFlagSet(name), name, args)
}

func seedTransactions(a *App, args []string) error {
	fs := a.newFlagSet("seed")
	count := fs.Int("count", defaultSeedCount, "number of transactions to generate")
	seed := fs.Uint64("seed", 0, "random seed for reproducible output (0 picks one)")
	if err := noArgumentsAfter(fs, "seed", args); err != nil {
		return err
	}

	start, end := services.TrailingRange(a.today(), seedRangeDays)
	generated, err := a.newGenerator(*seed).Generate(*count, start, end)
	if err != nil {
		return err
	}
	if err := a.service.AppendTransactions(generated); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Added %d generated transactions (%s to %s)\n", len(generated), start, end)
	return nil
}

func serve(a *App, args []string) error {
	fs := a.newFlagSet("serve")
	addr := fs.String("addr", a.cfg.Server.Address(), "listen address")
	if err := noArgumentsAfter(fs, "serve", args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.WithComponent(a.logger, "server")
	guarded := services.NewGuardedBudgetService(a.service, services.NewCircuitBreaker(services.DefaultCircuitBreakerConfig()), logger)
	srv := server.New(a.cfg.Server, guarded, a.metrics, a.cfg.Storage.Backend, logger)
	fmt.Fprintf(a.stdout, "Serving reports on http://%s (Ctrl+C to stop)\n", *addr)
	return srv.Run(ctx, *addr)
}

func noArgumentsAfter(fs *flag.FlagSet, name string, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}
	if fs.NArg() > 0 {
		return apierrors.NewValidationError(apierrors.ValidationInvalidArgument, "",
			fmt.Sprintf("%s: unexpected argument %q", name, fs.Arg(0)))
	}
	return nil
}
