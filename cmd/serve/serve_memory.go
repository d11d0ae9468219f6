package serve

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/remesas/cmd/env"
	"github.com/sig-0/remesas/storage/memory"
	"github.com/sig-0/remesas/storage/types"
)

const demoSessionTTL = 30 * 24 * time.Hour

// demoUser is the user signed in by --demo-token
var demoUser = types.User{
	ID:     "demo",
	Email:  "demo@remesas.local",
	Role:   "user",
	Plan:   "demo",
	Active: true,
}

type serveMemoryCfg struct {
	rootCfg *serveCfg

	demoToken string
}

// newServeMemoryCmd creates the serve memory command
func newServeMemoryCmd(rootCfg *serveCfg) *ffcli.Command {
	cfg := &serveMemoryCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("memory", flag.ExitOnError)
	cfg.rootCfg.registerFlags(fs)

	fs.StringVar(
		&cfg.demoToken,
		"demo-token",
		"",
		"if set, a demo user is signed in with this session token",
	)

	return &ffcli.Command{
		Name:       "memory",
		ShortUsage: "serve memory [flags]",
		LongHelp:   "Serves the remesas backend, using an in-memory datastore",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *serveMemoryCfg) exec(ctx context.Context, _ []string) error {
	if err := c.rootCfg.loadConfig(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	// Create an in-memory store
	store := memory.NewStorage()

	if c.demoToken != "" {
		store.SaveUser(demoUser)
		store.CreateSession(c.demoToken, demoUser.ID, demoSessionTTL)

		logger.Info("demo session created", "user", demoUser.ID)
	}

	return c.rootCfg.run(ctx, logger, store)
}
