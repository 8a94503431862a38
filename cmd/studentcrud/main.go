package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/studiowebux/studentcrud/internal/api"
	"github.com/studiowebux/studentcrud/internal/cli"
	"github.com/studiowebux/studentcrud/internal/config"
	"github.com/studiowebux/studentcrud/internal/history"
	"github.com/studiowebux/studentcrud/internal/keybinds"
	"github.com/studiowebux/studentcrud/internal/logging"
	"github.com/studiowebux/studentcrud/internal/mockserver"
	"github.com/studiowebux/studentcrud/internal/tui"
	"github.com/studiowebux/studentcrud/internal/types"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "studentcrud",
	Short: "Student records client",
	Long: `studentcrud lists, searches, creates, updates and deletes student records
stored behind a REST collection.

Run without arguments to start the interactive TUI, or use a subcommand for scripting.

Examples:
  studentcrud                                   # Start interactive TUI
  studentcrud list --search ada                 # First page of matching students
  studentcrud list --all -o json --query '[].id'
  studentcrud add --fname Ada --lname Lovelace --birthdate 1815-12-10 --phone 555-0100
  studentcrud update 12 --address "London"      # Only the given fields are sent
  studentcrud delete 12
  studentcrud serve                             # Local backend on localhost:8080`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of students",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd)
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a student",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd(cmd)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(cmd, args[0])
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd, args[0])
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the local activity history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local backend implementing the student collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

var keybindsCmd = &cobra.Command{
	Use:   "keybinds",
	Short: "Write the default keybindings for editing, or validate them with --check",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKeybinds(cmd)
	},
}

// Global flags
var (
	flagConfig  string
	flagBaseURL string
	flagVerbose bool
)

// Flags for list
var (
	listSearch string
	listPage   int
	listAll    bool
	listOutput string
	listQuery  string
)

// Flags for add/update
var (
	fieldFirstName   string
	fieldLastName    string
	fieldBirthdate   string
	fieldAddress     string
	fieldPhoneNumber string
	recordOutput     string
)

// Flags for history
var (
	historyLimit  int
	historyClear  bool
	historyOutput string
)

// Flags for serve
var (
	serveAddr     string
	serveDB       string
	serveResource string
	serveDelay    string
)

// Flags for keybinds
var (
	keybindsForce bool
	keybindsCheck bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.studentcrud/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Override the API base URL")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at debug level")

	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Filter by first name, last name or address")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page of the filtered list (5 per page)")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Print every match instead of one page")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", cli.FormatTable, "Output format (table/json/yaml)")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "JMESPath expression applied to the rows")

	for _, cmd := range []*cobra.Command{addCmd, updateCmd} {
		cmd.Flags().StringVar(&fieldFirstName, "fname", "", "First name")
		cmd.Flags().StringVar(&fieldLastName, "lname", "", "Last name")
		cmd.Flags().StringVar(&fieldBirthdate, "birthdate", "", "Birthdate (YYYY-MM-DD)")
		cmd.Flags().StringVar(&fieldAddress, "address", "", "Address")
		cmd.Flags().StringVar(&fieldPhoneNumber, "phone", "", "Phone number")
		cmd.Flags().StringVarP(&recordOutput, "output", "o", cli.FormatTable, "Output format (table/json/yaml)")
	}

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete every entry")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", cli.FormatTable, "Output format (table/json/yaml)")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, localhost:8080)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite database (default ~/.studentcrud/mock.db)")
	serveCmd.Flags().StringVar(&serveResource, "resource", "", "Collection path (default from config, crud)")
	serveCmd.Flags().StringVar(&serveDelay, "delay", "", "Delay added to every response, e.g. 500ms")

	keybindsCmd.Flags().BoolVarP(&keybindsForce, "force", "f", false, "Overwrite an existing keybinds file")
	keybindsCmd.Flags().BoolVar(&keybindsCheck, "check", false, "Validate the keybinds file instead of writing it")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(keybindsCmd)
}

// app holds what the client commands share
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *api.Client
	history *history.Manager
	store   api.Store
}

// setup loads the configuration and builds the logger, the HTTP client and
// the history recorder. Interactive runs log to the file only.
func setup(interactive bool) (*app, error) {
	cfg, logger, err := loadConfig(interactive)
	if err != nil {
		return nil, err
	}

	client, err := api.New(api.Options{
		BaseURL:  cfg.API.BaseURL,
		Resource: cfg.API.Resource,
		Timeout:  cfg.API.Timeout,
		TLS:      &cfg.API.TLS,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, client: client, store: client}

	if !cfg.History.Disabled {
		mgr, err := history.NewManager(config.DatabasePath)
		if err != nil {
			// Continue without history
			logger.Warn("history unavailable", zap.Error(err))
		} else {
			a.history = mgr
			a.store = history.NewRecorder(client, mgr, logger)
		}
	}

	return a, nil
}

func loadConfig(interactive bool) (*config.Config, *zap.Logger, error) {
	if err := config.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}

	if flagBaseURL != "" {
		cfg.API.BaseURL = strings.TrimRight(flagBaseURL, "/")
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.LogPath(),
		Verbose: flagVerbose,
		Stderr:  !interactive,
	})
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

func (a *app) close() {
	a.client.CloseIdleConnections()
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("error closing history database", zap.Error(err))
		}
	}
	a.logger.Sync()
}

// runTUI starts the interactive TUI
func runTUI(cmd *cobra.Command) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.close()

	registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return err
	}
	result := keybinds.NewValidator().ValidateRegistry(registry)
	if result.HasErrors() {
		return fmt.Errorf("invalid keybindings in %s:\n%s", config.KeybindsFile, result.String())
	}
	for _, w := range result.Warnings {
		a.logger.Warn("keybinding warning", zap.String("warning", w.Error()))
	}

	return tui.Run(tui.Options{
		Store:        a.store,
		History:      a.history,
		Keybinds:     registry,
		Logger:       a.logger,
		Endpoint:     a.client.CollectionURL(),
		UI:           a.cfg.UI,
		HistoryLimit: a.cfg.History.Limit,
	})
}

func runList(cmd *cobra.Command) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	return cli.List(cmd.Context(), a.store, cmd.OutOrStdout(), cli.ListOptions{
		Search: listSearch,
		Page:   listPage,
		All:    listAll,
		Output: listOutput,
		Query:  listQuery,
	})
}

func runAdd(cmd *cobra.Command) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	draft := types.Draft{
		FirstName:   fieldFirstName,
		LastName:    fieldLastName,
		Birthdate:   fieldBirthdate,
		Address:     fieldAddress,
		PhoneNumber: fieldPhoneNumber,
	}
	return cli.Add(cmd.Context(), a.store, cmd.OutOrStdout(), draft, recordOutput)
}

func runUpdate(cmd *cobra.Command, id string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	// Only flags given on the command line are sent
	var patch types.Patch
	flags := cmd.Flags()
	if flags.Changed("fname") {
		patch.FirstName = &fieldFirstName
	}
	if flags.Changed("lname") {
		patch.LastName = &fieldLastName
	}
	if flags.Changed("birthdate") {
		patch.Birthdate = &fieldBirthdate
	}
	if flags.Changed("address") {
		patch.Address = &fieldAddress
	}
	if flags.Changed("phone") {
		patch.PhoneNumber = &fieldPhoneNumber
	}

	return cli.Update(cmd.Context(), a.store, cmd.OutOrStdout(), id, patch, recordOutput)
}

func runDelete(cmd *cobra.Command, id string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	return cli.Delete(cmd.Context(), a.store, cmd.OutOrStdout(), id)
}

func runHistory(cmd *cobra.Command) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	return cli.History(a.history, cmd.OutOrStdout(), cli.HistoryOptions{
		Limit:  historyLimit,
		Clear:  historyClear,
		Output: historyOutput,
	})
}

// runServe runs the mock backend until interrupted
func runServe(cmd *cobra.Command) error {
	cfg, logger, err := loadConfig(false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	mockCfg := mockserver.Config{
		Addr:     cfg.Mock.Addr,
		Resource: cfg.API.Resource,
		Logging:  true,
	}
	if serveAddr != "" {
		mockCfg.Addr = serveAddr
	}
	if serveResource != "" {
		mockCfg.Resource = serveResource
	}
	if serveDelay != "" {
		delay, err := parseDelay(serveDelay)
		if err != nil {
			return err
		}
		mockCfg.Delay = delay
	}

	dbPath := cfg.MockDatabase()
	if serveDB != "" {
		dbPath = serveDB
	}

	store, err := mockserver.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	server := mockserver.NewServer(mockCfg, store, logger)
	if err := server.Start(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s/%s (database %s)\n", server.GetAddress(), server.Resource(), dbPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Request log at %s%s\n", server.GetAddress(), mockserver.LogsPath)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return server.Stop()
}

func runKeybinds(cmd *cobra.Command) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	if keybindsCheck {
		return cli.CheckKeybinds(config.KeybindsFile, cmd.OutOrStdout())
	}

	if _, err := os.Stat(config.KeybindsFile); err == nil && !keybindsForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.KeybindsFile)
	}

	if err := keybinds.SaveConfig(keybinds.ExportDefaults(), config.KeybindsFile); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default keybindings to %s\n", config.KeybindsFile)
	return nil
}
