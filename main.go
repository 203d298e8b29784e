package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"jarvis-chat/internal/backend"
	"jarvis-chat/internal/config"
	"jarvis-chat/internal/logging"
	"jarvis-chat/internal/transcript"
	"jarvis-chat/internal/ui"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	configPath string
	url        string
	timeout    int
	logFile    string
	verbose    bool
	plain      bool
}

// app holds the components every command needs
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *backend.Client
	store  *transcript.Store
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "jarvis",
		Short:         "Chat with the Jarvis assistant from the terminal",
		Long:          "Jarvis runs Python code, processes files and answers questions. Start without arguments for an interactive session.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, runInteractive)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", config.DefaultPath, "path to config file")
	pf.StringVar(&flags.url, "url", "", "backend base URL (overrides config)")
	pf.IntVar(&flags.timeout, "timeout", 0, "HTTP timeout in seconds, 0 for none (overrides config)")
	pf.StringVar(&flags.logFile, "log-file", "", "log file path, empty to disable (overrides config)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log debug messages")
	pf.BoolVar(&flags.plain, "plain", false, "use the line-oriented interface even on a terminal")

	cmd.AddCommand(newAskCmd(flags))
	cmd.AddCommand(newUploadCmd(flags))
	cmd.AddCommand(newFilesCmd(flags))
	cmd.AddCommand(newDownloadCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jarvis %s (commit: %s)\n", Version, Commit)
		},
	}
}

// loadConfig reads the config file and applies flags the user set
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("url") {
		cfg.BackendURL = flags.url
	}
	if changed("timeout") {
		cfg.RequestTimeoutSecs = flags.timeout
	}
	if changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	if changed("verbose") {
		cfg.Verbose = flags.verbose
	}
	if changed("plain") {
		cfg.Plain = flags.plain
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// withApp builds the shared components, runs fn and tears them down
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, cmd *cobra.Command, a *app) error) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogFile, cfg.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a := &app{
		cfg:    cfg,
		logger: logger,
		client: backend.NewClient(cfg.BackendURL, cfg.RequestTimeout()),
		store:  transcript.NewStore(cfg.Greeting),
	}
	logger.Info("Starting",
		zap.String("command", cmd.Name()),
		zap.String("backend", cfg.BackendURL),
		zap.String("session", a.store.SessionID()),
	)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	return fn(ctx, cmd, a)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// runInteractive picks the full-screen client on a terminal and plain mode otherwise
func runInteractive(ctx context.Context, cmd *cobra.Command, a *app) error {
	if !a.cfg.Plain && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		if err := a.client.HealthCheck(ctx); err != nil {
			a.logger.Warn("Backend health check failed", zap.Error(err))
		}
		workDir, err := os.Getwd()
		if err != nil {
			workDir = "."
		}
		return ui.Run(ctx, ui.Options{
			Store:       a.store,
			Client:      a.client,
			Logger:      a.logger,
			DownloadDir: a.cfg.DownloadDir,
			WorkDir:     workDir,
		})
	}
	return runPlain(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
