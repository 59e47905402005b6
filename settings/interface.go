package settings

import (
	"net/url"
	"time"

	"github.com/bountiful-platform/bountiful/chaincfg"
)

type Settings struct {
	ClientName     string
	DataFolder     string
	Network        string
	ChainCfgParams *chaincfg.Params
	Logging        LoggingSettings
	Bounty         BountySettings
	Ledger         LedgerSettings
	Store          StoreSettings
	Kafka          KafkaSettings
	API            APISettings
}

type LoggingSettings struct {
	Level  string
	Pretty bool
}

// FeeRecipient is one stakeholder of the dev fee split. Address is the hex encoded
// compressed public key the share is paid to.
type FeeRecipient struct {
	Address string
	Share   uint64
}

type BountySettings struct {
	Version                  string
	DevFeeRate               uint64
	RefundMode               string
	FeeRecipients            []FeeRecipient
	FeeDenominator           uint64
	ConfirmationTimeout      time.Duration
	ConfirmationPollInterval time.Duration
}

type LedgerSettings struct {
	ExplorerURL       *url.URL
	RequestTimeout    time.Duration
	HeightCacheTTL    time.Duration
	// RequestsPerSecond caps the request rate to the explorer, 0 is unlimited.
	RequestsPerSecond int
}

type StoreSettings struct {
	BountyStore    *url.URL
	RecordCacheTTL time.Duration
}

type KafkaSettings struct {
	Enabled     bool
	Hosts       string
	Port        int
	Partitions  int
	Transitions string
}

type APISettings struct {
	HTTPListenAddress string
	APIPrefix         string
}
