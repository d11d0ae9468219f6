package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/remesas/aggregate"
	"github.com/sig-0/remesas/cmd/env"
	"github.com/sig-0/remesas/ingest"
	"github.com/sig-0/remesas/server"
	"github.com/sig-0/remesas/server/config"
	"github.com/sig-0/remesas/settings"
	"github.com/sig-0/remesas/storage"
	"github.com/sig-0/remesas/storage/types"
)

const flushTimeout = 10 * time.Second

// serveCfg wraps the serve configuration
type serveCfg struct {
	config *config.Config

	configPath    string
	sourceTimeout time.Duration
	debounce      time.Duration
	warm          bool
}

// NewServeCmd creates the serve subcommand
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve <subcommand> [flags]",
		LongHelp:   "Serves the remesas backend",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}

	cmd.Subcommands = []*ffcli.Command{
		newServeSQLCmd(cfg),
		newServeRedisCmd(cfg),
		newServeMemoryCmd(cfg),
	}

	return cmd
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the server",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)

	fs.DurationVar(
		&c.sourceTimeout,
		"source-timeout",
		aggregate.DefaultSourceTimeout,
		"the per-source upstream timeout, retries included",
	)

	fs.DurationVar(
		&c.debounce,
		"settings-debounce",
		settings.DefaultDebounce,
		"the delay before edited adjustments are persisted",
	)

	fs.BoolVar(
		&c.warm,
		"warm",
		false,
		"refresh every source in the background, ahead of its cache expiry",
	)
}

// loadConfig reads the server configuration, if any.
// The listen flag is kept unless the file sets it
func (c *serveCfg) loadConfig() error {
	if c.configPath == "" {
		return nil
	}

	serverCfg, err := config.Read(c.configPath)
	if err != nil {
		return fmt.Errorf("unable to read server config, %w", err)
	}

	if serverCfg.ListenAddress == config.DefaultListenAddress {
		serverCfg.ListenAddress = c.config.ListenAddress
	}

	c.config = serverCfg

	return nil
}

// run serves the API over the given store until the process is signaled [BLOCKING]
func (c *serveCfg) run(ctx context.Context, logger *slog.Logger, store storage.Storage) error {
	agg, err := NewAggregator(c.sourceTimeout, aggregate.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("unable to create aggregator: %w", err)
	}

	hub := settings.NewHub(
		store,
		settings.WithLogger(logger),
		settings.WithDebounce(c.debounce),
	)

	s, err := server.New(
		store,
		agg,
		server.WithLogger(logger),
		server.WithConfig(c.config),
		server.WithSettings(hub),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	// Start the background refresh, if any
	if c.warm {
		orchestrator := ingest.New(
			ingest.WithLogger(logger),
			ingest.WithRefreshHook(func(name string, rates []*types.ExchangeRate) {
				for _, rate := range rates {
					logger.Debug(
						"refreshed rate",
						"source", name,
						"field", rate.Field,
						"rate", rate.Rate,
					)
				}
			}),
		)

		for _, refresher := range agg.Refreshers() {
			if err = orchestrator.Register(refresher); err != nil {
				return fmt.Errorf("unable to register refresher: %w", err)
			}
		}

		group.Go(func() error {
			return orchestrator.Start(gCtx)
		})
	}

	runErr := group.Wait()

	// Persist any adjustments still in their debounce window
	flushCtx, cancelFlush := context.WithTimeout(context.Background(), flushTimeout)
	defer cancelFlush()

	if err = hub.Flush(flushCtx); err != nil {
		logger.Error(
			"unable to flush pending adjustments",
			"err", err,
		)
	}

	hub.Close()

	return runErr
}
