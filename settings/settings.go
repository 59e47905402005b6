package settings

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/bountiful-platform/bountiful/chaincfg"
	"github.com/bountiful-platform/bountiful/errors"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

const (
	RefundModeVersion = "version"
	RefundModeReward  = "reward"
	RefundModeValue   = "value"
)

// defaultFeeRecipients is the platform split used when bounty_feeRecipients is not set.
const defaultFeeRecipients = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798:32|" +
	"02c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5:32|" +
	"02f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9:32|" +
	"02e493dbf1c10d80f3581e4904930b1404cc6c13900ee0758474fa94abe8c4cd13:4"

func NewSettings() *Settings {
	network := getString("network", "mainnet")

	params, err := chaincfg.GetChainParams(network)
	if err != nil {
		panic(err)
	}

	denominator := getUint64("bounty_feeDenominator", 100)

	recipients, err := ParseFeeRecipients(getString("bounty_feeRecipients", defaultFeeRecipients), denominator)
	if err != nil {
		panic(err)
	}

	refundMode := getString("bounty_refundMode", RefundModeVersion)
	if err = validateRefundMode(refundMode); err != nil {
		panic(err)
	}

	return &Settings{
		ClientName:     getString("clientName", "bountiful"),
		DataFolder:     getString("dataFolder", "data"),
		Network:        network,
		ChainCfgParams: params,
		Logging: LoggingSettings{
			Level:  getString("logLevel", "INFO"),
			Pretty: getBool("PRETTY_LOGS", true),
		},
		Bounty: BountySettings{
			Version:                  getString("bounty_version", params.DefaultVersion),
			DevFeeRate:               getUint64("bounty_devFeeRate", 10), // 10 = 1%
			RefundMode:               refundMode,
			FeeRecipients:            recipients,
			FeeDenominator:           denominator,
			ConfirmationTimeout:      getDuration("bounty_confirmationTimeout", defaultConfirmationTimeout),
			ConfirmationPollInterval: getDuration("bounty_confirmationPollInterval", defaultConfirmationPollInterval),
		},
		Ledger: LedgerSettings{
			ExplorerURL:       getURL("ledger_explorerURL", params.ExplorerURL),
			RequestTimeout:    getDuration("ledger_requestTimeout", defaultRequestTimeout),
			HeightCacheTTL:    getDuration("ledger_heightCacheTTL", defaultHeightCacheTTL),
			RequestsPerSecond: getInt("ledger_requestsPerSecond", defaultRequestsPerSecond),
		},
		Store: StoreSettings{
			BountyStore:    getURL("bountystore", "sqlitememory:///bounty"),
			RecordCacheTTL: getDuration("bountystore_recordCacheTTL", defaultRecordCacheTTL),
		},
		Kafka: KafkaSettings{
			Enabled:     getBool("KAFKA_ENABLED", false),
			Hosts:       getString("KAFKA_HOSTS", "localhost:9092"),
			Port:        getInt("KAFKA_PORT", 9092),
			Partitions:  getInt("KAFKA_PARTITIONS", 1),
			Transitions: getString("KAFKA_TRANSITIONS", "bounty-transitions"),
		},
		API: APISettings{
			HTTPListenAddress: getString("api_httpListenAddress", ":8090"),
			APIPrefix:         getString("api_apiPrefix", "/api/v1"),
		},
	}
}

// ParseFeeRecipients parses "pubkey:share|pubkey:share" and checks the shares add up
// to the denominator.
func ParseFeeRecipients(raw string, denominator uint64) ([]FeeRecipient, error) {
	if denominator == 0 {
		return nil, errors.NewConfigurationError("fee denominator must be positive")
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var (
		recipients []FeeRecipient
		total      uint64
	)

	for _, part := range strings.Split(raw, "|") {
		address, shareStr, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			return nil, errors.NewConfigurationError("fee recipient %q must be address:share", part)
		}

		pubKey, err := hex.DecodeString(address)
		if err != nil {
			return nil, errors.NewConfigurationError("fee recipient %q is not hex", address, err)
		}

		if _, err = ec.ParsePubKey(pubKey); err != nil {
			return nil, errors.NewConfigurationError("fee recipient %q is not a public key", address, err)
		}

		share, err := strconv.ParseUint(shareStr, 10, 64)
		if err != nil || share == 0 {
			return nil, errors.NewConfigurationError("fee recipient %q has invalid share %q", address, shareStr)
		}

		total += share

		recipients = append(recipients, FeeRecipient{Address: strings.ToLower(address), Share: share})
	}

	if total != denominator {
		return nil, errors.NewConfigurationError("fee recipient shares sum to %d, expected %d", total, denominator)
	}

	return recipients, nil
}

func validateRefundMode(mode string) error {
	switch mode {
	case RefundModeVersion, RefundModeReward, RefundModeValue:
		return nil
	default:
		return errors.NewConfigurationError("unknown bounty_refundMode %q", mode)
	}
}
