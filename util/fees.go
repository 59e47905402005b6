package util

import (
	"math/bits"

	"github.com/bountiful-platform/bountiful/chaincfg"
	"github.com/bountiful-platform/bountiful/errors"
)

// FeeRateDenominator is the denominator of the platform fee rate: a rate of 10 is 1%.
const FeeRateDenominator = 1000

// RewardSplit is how a reward leaves a bounty on withdrawal.
// Winner + Platform + Miner == reward.
type RewardSplit struct {
	Winner   uint64
	Platform uint64
	Miner    uint64
}

// MulDiv returns floor(a * b / d) using a 128 bit intermediate product.
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, errors.NewInvalidArgumentError("division by zero")
	}

	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, errors.NewInvalidArgumentError("%d * %d / %d overflows", a, b, d)
	}

	q, _ := bits.Div64(hi, lo, d)

	return q, nil
}

// PlatformFee returns floor(reward * rate / 1000).
func PlatformFee(reward, rate uint64) (uint64, error) {
	return MulDiv(reward, rate, FeeRateDenominator)
}

// SplitReward computes the winner payout of a withdrawal. A non-zero platform fee and
// the winner amount must both reach the dust threshold. A zero platform fee means
// the fee output is omitted.
func SplitReward(params *chaincfg.Params, reward, rate uint64) (*RewardSplit, error) {
	platform, err := PlatformFee(reward, rate)
	if err != nil {
		return nil, err
	}

	if reward < platform || reward-platform < params.MinerFee {
		return nil, errors.NewInvalidPreconditionError("reward %d does not cover platform fee %d and miner fee %d", reward, platform, params.MinerFee)
	}

	split := &RewardSplit{
		Winner:   reward - platform - params.MinerFee,
		Platform: platform,
		Miner:    params.MinerFee,
	}

	if split.Winner < params.DustThreshold {
		return nil, errors.NewDustOutputError("winner amount %d is below dust threshold %d", split.Winner, params.DustThreshold)
	}

	if split.Platform != 0 && split.Platform < params.DustThreshold {
		return nil, errors.NewDustOutputError("platform fee %d is below dust threshold %d", split.Platform, params.DustThreshold)
	}

	return split, nil
}

// DistributeFees splits total minus the miner fee between shares. Each amount is
// floor(share * distributable / denominator); the remainder stays with the miner output.
// Returned amounts line up with shares, the miner output value is returned separately.
func DistributeFees(params *chaincfg.Params, total uint64, shares []uint64, denominator uint64) ([]uint64, uint64, error) {
	if total < params.FeeDistributionMinimum {
		return nil, 0, errors.NewInvalidPreconditionError("fee total %d is below distribution minimum %d", total, params.FeeDistributionMinimum)
	}

	if len(shares) == 0 {
		return nil, 0, errors.NewInvalidArgumentError("no fee recipients")
	}

	var sum uint64
	for _, share := range shares {
		sum += share
	}

	if sum != denominator {
		return nil, 0, errors.NewInvalidArgumentError("fee shares sum to %d, denominator is %d", sum, denominator)
	}

	distributable := total - params.MinerFee
	amounts := make([]uint64, len(shares))
	paid := uint64(0)

	for i, share := range shares {
		amount, err := MulDiv(share, distributable, denominator)
		if err != nil {
			return nil, 0, err
		}

		if amount < params.DustThreshold {
			return nil, 0, errors.NewDustOutputError("fee share %d of %d pays %d, below dust threshold %d", i, total, amount, params.DustThreshold)
		}

		amounts[i] = amount
		paid += amount
	}

	return amounts, total - paid, nil
}
