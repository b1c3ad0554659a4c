package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/okian/matchclock/internal/adapters/repository"
	"github.com/okian/matchclock/internal/config"
	"github.com/okian/matchclock/pkg/logger"
)

// cli carries state shared by every subcommand.
type cli struct {
	configPath string
	output     string

	cfg *config.Config
	log logger.Logger
}

func main() {
	os.Exit(run())
}

func run() int {
	// Our collectors live on a private registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "matchclock",
		Short: "Tournament match clock",
		Long: `matchclock drives a wall clock, chronometer, countdown timer, football match
clock and alarm clock, and records goals and cards for the school tournament.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return c.setup(cmd) },
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (env: MATCHCLOCK_CONFIG)")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "table", "Output format (table, json)")

	root.AddCommand(serveCmd(c))
	root.AddCommand(simulateCmd(c))
	root.AddCommand(seedCmd(c))
	root.AddCommand(matchesCmd(c))
	root.AddCommand(scorersCmd(c))
	return root
}

// setup loads configuration (defaults -> optional file -> env) and the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	if c.output != "table" && c.output != "json" {
		return fmt.Errorf("unsupported output format: %s", c.output)
	}
	if c.configPath != "" {
		if err := os.Setenv("MATCHCLOCK_CONFIG", c.configPath); err != nil {
			return err
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	c.log = logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	c.cfg = cfg
	return nil
}

// openStore opens the record store named by the config.
func (c *cli) openStore(ctx context.Context) (*repository.SQLiteStore, error) {
	store, err := repository.Open(ctx, c.cfg.DBPath,
		repository.WithLogger(c.log.Named("repository")),
		repository.WithMaxScorers(c.cfg.MaxScorersLimit))
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", c.cfg.DBPath, err)
	}
	return store, nil
}

// seedData is the configured seed file, or the built-in tournament.
func (c *cli) seedData() (repository.SeedData, error) {
	if c.cfg.SeedFile == "" {
		return repository.DefaultSeed(), nil
	}
	return repository.LoadSeedFile(c.cfg.SeedFile)
}

// openSeededStore opens the store and seeds it when empty.
func (c *cli) openSeededStore(ctx context.Context) (*repository.SQLiteStore, error) {
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	data, err := c.seedData()
	if err == nil {
		_, err = store.Seed(ctx, data)
	}
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
