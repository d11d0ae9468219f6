package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/remesas/cmd/env"
	"github.com/sig-0/remesas/storage/redis"
)

type serveRedisCfg struct {
	rootCfg *serveCfg

	prefix    string
	demoToken string
}

// newServeRedisCmd creates the serve redis command
func newServeRedisCmd(rootCfg *serveCfg) *ffcli.Command {
	cfg := &serveRedisCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("redis", flag.ExitOnError)
	cfg.rootCfg.registerFlags(fs)

	fs.StringVar(
		&cfg.prefix,
		"key-prefix",
		redis.DefaultPrefix,
		"the prefix of every Redis key",
	)

	fs.StringVar(
		&cfg.demoToken,
		"demo-token",
		"",
		"if set, a demo user is stored and signed in with this session token",
	)

	return &ffcli.Command{
		Name:       "redis",
		ShortUsage: "serve redis [flags]",
		LongHelp:   "Serves the remesas backend, using a Redis datastore",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *serveRedisCfg) exec(ctx context.Context, _ []string) error {
	if err := c.rootCfg.loadConfig(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	url := os.Getenv(env.Prefix + env.RedisURLSuffix)
	if url == "" {
		return fmt.Errorf("missing %s", env.Prefix+env.RedisURLSuffix)
	}

	client, err := redis.NewClient(url)
	if err != nil {
		return err
	}

	defer func() {
		if err = client.Close(); err != nil {
			logger.Error(
				"unable to gracefully close Redis connection",
				"err", err,
			)
		}
	}()

	// Check Redis reachability
	pingCtx, cancelPing := context.WithTimeout(ctx, time.Second*5)
	defer cancelPing()

	if err = client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("unable to reach Redis (ping): %w", err)
	}

	logger.Info("Redis ping success")

	store := redis.NewStorage(client, redis.WithPrefix(c.prefix))

	if c.demoToken != "" {
		if err = store.SaveUser(ctx, demoUser); err != nil {
			return fmt.Errorf("unable to seed demo user: %w", err)
		}

		if err = store.CreateSession(ctx, c.demoToken, demoUser.ID, demoSessionTTL); err != nil {
			return fmt.Errorf("unable to seed demo session: %w", err)
		}

		logger.Info("demo session created", "user", demoUser.ID)
	}

	return c.rootCfg.run(ctx, logger, store)
}
