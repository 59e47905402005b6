package chaincfg

import (
	"errors"
	"fmt"
)

// Net identifies a ledger network.
type Net uint32

const (
	MainNet    Net = 0x00
	TestNet    Net = 0x10
	RegTestNet Net = 0x20
)

// Params defines a ledger network by the constants the bounty scripts are compiled
// against. Records built for one network are never valid on another.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the network id.
	Net Net

	// MinBoxValue is the carrying value a bounty record holds on top of its
	// reward, and the value of mint guard and judgment boxes.
	MinBoxValue uint64

	// DustThreshold is the smallest value an output may carry. Anything below
	// it is dust and rejected by the ledger.
	DustThreshold uint64

	// MinerFee is the fee paid by every bounty transition.
	MinerFee uint64

	// DisputePeriod is the number of blocks between a judgment and the
	// earliest height at which the reward can be withdrawn.
	DisputePeriod int32

	// FeeDistributionMinimum is the smallest total a fee distribution
	// transaction may move, miner fee included.
	FeeDistributionMinimum uint64

	// MinerFeeScript is the script of the output collecting the miner fee.
	MinerFeeScript []byte

	// DefaultVersion is the script version new bounties are created with.
	DefaultVersion string

	// ExplorerURL is the default explorer API endpoint for the network.
	ExplorerURL string
}

// MainNetParams defines the network parameters for the main network.
var MainNetParams = Params{
	Name:                   "mainnet",
	Net:                    MainNet,
	MinBoxValue:            1_000_000,
	DustThreshold:          50_000,
	MinerFee:               1_100_000,
	DisputePeriod:          720,
	FeeDistributionMinimum: 5_000_000,
	MinerFeeScript:         []byte("MINERFEE/mainnet"),
	DefaultVersion:         "v1_1",
	ExplorerURL:            "https://api.ergoplatform.com/api/v1",
}

// TestNetParams defines the network parameters for the public test network.
var TestNetParams = Params{
	Name:                   "testnet",
	Net:                    TestNet,
	MinBoxValue:            1_000_000,
	DustThreshold:          50_000,
	MinerFee:               1_100_000,
	DisputePeriod:          720,
	FeeDistributionMinimum: 5_000_000,
	MinerFeeScript:         []byte("MINERFEE/testnet"),
	DefaultVersion:         "v1_1",
	ExplorerURL:            "https://api-testnet.ergoplatform.com/api/v1",
}

// RegressionNetParams defines the network parameters for local regression
// testing. The dispute period is short so payouts can be exercised quickly.
var RegressionNetParams = Params{
	Name:                   "regtest",
	Net:                    RegTestNet,
	MinBoxValue:            1_000_000,
	DustThreshold:          50_000,
	MinerFee:               1_100_000,
	DisputePeriod:          10,
	FeeDistributionMinimum: 5_000_000,
	MinerFeeScript:         []byte("MINERFEE/regtest"),
	DefaultVersion:         "v1_1",
	ExplorerURL:            "http://localhost:9053/api/v1",
}

var (
	// ErrDuplicateNet describes an error where the parameters for a network
	// could not be set due to the network already being registered.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownNet is returned by GetChainParams for unregistered names.
	ErrUnknownNet = errors.New("unknown network")
)

var registeredNets = make(map[string]*Params)

// Register registers the network parameters for a network. This may error with
// ErrDuplicateNet if the network is already registered.
func Register(params *Params) error {
	if _, ok := registeredNets[params.Name]; ok {
		return ErrDuplicateNet
	}

	for _, p := range registeredNets {
		if p.Net == params.Net {
			return ErrDuplicateNet
		}
	}

	registeredNets[params.Name] = params

	return nil
}

// mustRegister performs the same function as Register except it panics if there
// is an error. This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

func GetChainParams(network string) (*Params, error) {
	params, ok := registeredNets[network]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownNet, network)
	}

	return params, nil
}

func init() {
	mustRegister(&MainNetParams)
	mustRegister(&TestNetParams)
	mustRegister(&RegressionNetParams)
}
