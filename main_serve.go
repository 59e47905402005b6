package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/services/bountyapi"
	"github.com/bountiful-platform/bountiful/services/builder"
	"github.com/bountiful-platform/bountiful/services/lifecycle"
	"github.com/bountiful-platform/bountiful/services/validator"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/bountiful-platform/bountiful/util/retry"
	"github.com/ordishs/gocore"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "serve the bounty API and optionally distribute platform fees",
		Action: serveAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ledger",
				Usage: "ledger backend, explorer or memory",
				Value: ledgerExplorer,
			},
			&cli.DurationFlag{
				Name:  "distribute-interval",
				Usage: "how often to distribute collected platform fees, 0 disables",
			},
			&cli.StringFlag{
				Name:    "key",
				Usage:   "hex private key paying the miner fee of fee distributions",
				EnvVars: []string{"BOUNTIFUL_KEY"},
			},
		},
	}
}

func serveAction(c *cli.Context) error {
	tSettings := loadSettings()

	logger := ulogger.New(progname,
		ulogger.WithLevel(tSettings.Logging.Level),
		ulogger.WithPrettyLogs(tSettings.Logging.Pretty),
	)

	stats := gocore.Config().Stats()
	logger.Infof("STATS\n%s\nVERSION\n-------\n%s (%s)\n\n", stats, version, commit)

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := getBountyStore(logger, tSettings)
	if err != nil {
		return err
	}

	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("[Main] failed to close bounty store: %v", err)
		}
	}()

	l, err := getLedger(logger, tSettings, c.String("ledger"))
	if err != nil {
		return err
	}

	api := bountyapi.New(logger.New("api"), tSettings, store, l)
	if err = api.Init(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return api.Start(ctx)
	})

	if interval := c.Duration("distribute-interval"); interval > 0 {
		o, closeFn, err := newFeeDistributor(c, logger, tSettings, l)
		if err != nil {
			cancel()
			_ = g.Wait()

			return err
		}

		defer closeFn()

		g.Go(func() error {
			return distributeFees(ctx, logger, o, interval)
		})
	}

	<-ctx.Done()
	logger.Infof("[Main] received shutdown signal")

	if err := g.Wait(); err != nil {
		logger.Errorf("[Main] server returning an error: %v", err)
		return err
	}

	return nil
}

func newFeeDistributor(c *cli.Context, logger ulogger.Logger, tSettings *settings.Settings, l lifecycle.Ledger) (*lifecycle.Orchestrator, func(), error) {
	if c.String("key") == "" {
		return nil, nil, errors.NewConfigurationError("--key is required to distribute fees")
	}

	key, err := parsePrivateKey(c.String("key"))
	if err != nil {
		return nil, nil, err
	}

	distLogger := logger.New("fees")

	b, err := builder.New(distLogger, tSettings, validator.New(distLogger, tSettings))
	if err != nil {
		return nil, nil, err
	}

	opts := []lifecycle.Option{
		lifecycle.WithStore(bountyStore),
		lifecycle.WithRetry(retry.DefaultOptions),
	}

	notifier, producer, err := getNotifier(logger, tSettings)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {}

	if notifier != nil {
		opts = append(opts, lifecycle.WithNotifier(notifier))
		closeFn = func() {
			if err := producer.Close(); err != nil {
				logger.Errorf("[Main] failed to close transitions producer: %v", err)
			}
		}
	}

	o := lifecycle.New(distLogger, tSettings, b, l, lifecycle.NewKeyWallet(key, l), opts...)

	return o, closeFn, nil
}

// distributeFees pays out collected platform fees every interval until ctx ends.
func distributeFees(ctx context.Context, logger ulogger.Logger, o *lifecycle.Orchestrator, interval time.Duration) error {
	logger.Infof("[Main] distributing platform fees every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			result, err := o.DistributeFees(ctx)

			switch {
			case err == nil:
				logger.Infof("[Main] distributed platform fees in %s", result.TxID)
			case errors.IsPreconditionError(err):
				logger.Debugf("[Main] no platform fees to distribute: %v", err)
			case errors.IsContextError(err):
				return nil
			default:
				logger.Errorf("[Main] fee distribution failed: %v", err)
			}
		}
	}
}
