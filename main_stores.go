package main

import (
	"encoding/hex"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/ledger/explorer"
	"github.com/bountiful-platform/bountiful/ledger/memory"
	"github.com/bountiful-platform/bountiful/services/lifecycle"
	"github.com/bountiful-platform/bountiful/services/validator"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/stores/bounty"
	"github.com/bountiful-platform/bountiful/stores/bounty/factory"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/bountiful-platform/bountiful/util/kafka"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

const (
	ledgerExplorer = "explorer"
	ledgerMemory   = "memory"
)

var (
	bountyStore bounty.Store
	ledger      lifecycle.Ledger
)

func getBountyStore(logger ulogger.Logger, tSettings *settings.Settings) (bounty.Store, error) {
	if bountyStore != nil {
		return bountyStore, nil
	}

	if tSettings.Store.BountyStore == nil {
		return nil, errors.NewConfigurationError("no bountystore setting found")
	}

	store, err := factory.NewStore(logger, tSettings, tSettings.Store.BountyStore)
	if err != nil {
		return nil, err
	}

	bountyStore = store

	return bountyStore, nil
}

func getLedger(logger ulogger.Logger, tSettings *settings.Settings, kind string) (lifecycle.Ledger, error) {
	if ledger != nil {
		return ledger, nil
	}

	switch kind {
	case ledgerExplorer, "":
		client, err := explorer.New(logger, tSettings)
		if err != nil {
			return nil, err
		}

		ledger = client
	case ledgerMemory:
		ledger = memory.New(logger, validator.New(logger, tSettings), 0)
	default:
		return nil, errors.NewConfigurationError("unknown ledger %q, expected %s or %s", kind, ledgerExplorer, ledgerMemory)
	}

	return ledger, nil
}

// getNotifier returns nil when kafka is disabled.
func getNotifier(logger ulogger.Logger, tSettings *settings.Settings) (*lifecycle.KafkaNotifier, kafka.KafkaProducerI, error) {
	if !tSettings.Kafka.Enabled {
		logger.Infof("[Main] kafka disabled, transition events are not published")
		return nil, nil, nil
	}

	producer, err := kafka.NewTransitionsProducer(tSettings.Kafka)
	if err != nil {
		return nil, nil, errors.NewServiceError("failed to connect transitions producer", err)
	}

	logger.Infof("[Main] publishing transition events to %s", tSettings.Kafka.Transitions)

	return lifecycle.NewKafkaNotifier(producer), producer, nil
}

func parsePrivateKey(s string) (*ec.PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		return nil, errors.NewInvalidArgumentError("private key must be 32 hex encoded bytes")
	}

	key, _ := ec.PrivateKeyFromBytes(b)

	return key, nil
}
