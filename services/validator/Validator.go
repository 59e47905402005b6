package validator

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/bountiful-platform/bountiful/chaincfg"
	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// Validator checks bounty transitions against the rules of one network.
type Validator struct {
	logger     ulogger.Logger
	params     *chaincfg.Params
	refundMode string
}

func New(logger ulogger.Logger, tSettings *settings.Settings, opts ...Option) *Validator {
	initPrometheusMetrics()

	options := &Options{
		params:     tSettings.ChainCfgParams,
		refundMode: tSettings.Bounty.RefundMode,
	}

	for _, o := range opts {
		o(options)
	}

	if options.refundMode == "" {
		options.refundMode = settings.RefundModeVersion
	}

	return &Validator{
		logger:     logger,
		params:     options.params,
		refundMode: options.refundMode,
	}
}

func (v *Validator) Params() *chaincfg.Params {
	return v.params
}

// Check runs the predicate of a single action.
func (v *Validator) Check(action model.Action, t *model.Transition, vc *Context) error {
	err := v.check(action, t, vc)
	observe(action, err)

	return err
}

// Accepts is the ledger's view of a spend of input 0: a mint guard accepts a correctly
// built bounty, a fee box accepts a correct distribution, and a bounty accepts the
// transition if any of its actions does.
func (v *Validator) Accepts(t *model.Transition, vc *Context) (model.Action, error) {
	if len(t.Inputs) == 0 {
		return "", errors.NewInvalidArgumentError("transition spends nothing")
	}

	switch model.ScriptTag(t.Inputs[0].Script) {
	case model.ScriptTagMintGuard:
		err := v.ValidateMintSpend(t)
		observe(model.ActionCreate, err)

		return model.ActionCreate, err

	case model.ScriptTagFeeDistribution:
		err := v.ValidateFeeDistribution(t)
		observe(model.ActionDistributeFees, err)

		return model.ActionDistributeFees, err

	case model.ScriptTagBounty:
		reasons := make([]string, 0, len(model.BountyActions))

		for _, action := range model.BountyActions {
			err := v.check(action, t, vc)
			if err == nil {
				observe(action, nil)
				return action, nil
			}

			reasons = append(reasons, err.Error())
		}

		observe("unknown", errors.ErrInvalidPrecondition)

		return "", errors.NewInvalidPreconditionError("no bounty action accepts the transaction: %s", strings.Join(reasons, "; "))

	default:
		return "", errors.NewInvalidArgumentError("input 0 is not guarded by a bounty, mint guard or fee script")
	}
}

// ValidateTx checks a whole transaction the way the ledger does: every input is
// unlocked, value and tokens balance, no output is dust, and the contract guarding
// input 0 accepts the spend.
func (v *Validator) ValidateTx(t *model.Transition, vc *Context) error {
	start := time.Now()
	defer func() {
		prometheusValidateTx.Observe(time.Since(start).Seconds())
	}()

	if len(t.Inputs) == 0 {
		return errors.NewInvalidArgumentError("transaction spends nothing")
	}

	for i, in := range t.Inputs {
		switch model.ScriptTag(in.Script) {
		case model.ScriptTagBounty, model.ScriptTagMintGuard:
			if i != 0 {
				return errors.NewInvalidPreconditionError("input %d: bounty and mint guard boxes can only be spent as input 0", i)
			}

		case model.ScriptTagFeeDistribution:
			if i != 0 && !bytes.Equal(in.Script, t.Inputs[0].Script) {
				return errors.NewInvalidPreconditionError("input %d: fee boxes can only be spent together with boxes of the same script", i)
			}

		case model.ScriptTagPubKey:
			pub, err := model.ParsePubKeyScript(in.Script)
			if err != nil || !vc.SignedBy(pub) {
				return errors.NewInvalidPreconditionError("input %d is not signed by its owner", i)
			}

		default:
			return errors.NewInvalidArgumentError("input %d has an unknown script", i)
		}
	}

	if err := v.checkLedgerRules(t); err != nil {
		return err
	}

	if model.ScriptTag(t.Inputs[0].Script) == model.ScriptTagPubKey {
		return nil
	}

	_, err := v.Accepts(t, vc)

	return err
}

func (v *Validator) checkLedgerRules(t *model.Transition) error {
	seen := make(map[chainhash.Hash]int, len(t.Inputs))

	for i, box := range t.Inputs {
		if first, ok := seen[box.BoxID]; ok {
			return errors.NewInvalidPreconditionError("inputs %d and %d spend the same box %s", first, i, box.BoxID)
		}

		seen[box.BoxID] = i
	}

	inValue, err := t.InputValue()
	if err != nil {
		return errors.NewInvalidPreconditionError("input values", err)
	}

	outValue, err := t.OutputValue()
	if err != nil {
		return errors.NewInvalidPreconditionError("output values", err)
	}

	if inValue != outValue {
		return errors.NewInvalidPreconditionError("inputs carry %d, outputs and fee carry %d", inValue, outValue)
	}

	if t.Fee < v.params.MinerFee {
		return errors.NewInvalidPreconditionError("fee %d is below miner fee %d", t.Fee, v.params.MinerFee)
	}

	for i := range t.Outputs {
		out := &t.Outputs[i]

		if out.Value < v.params.DustThreshold {
			return errors.NewDustOutputError("output %d carries %d, below dust threshold %d", i, out.Value, v.params.DustThreshold)
		}

		switch model.ScriptTag(out.Script) {
		case model.ScriptTagBounty, model.ScriptTagMintGuard:
			if out.Value < v.params.MinBoxValue {
				return errors.NewDustOutputError("output %d is a record carrying %d, below minimum box value %d", i, out.Value, v.params.MinBoxValue)
			}
		}
	}

	in := map[string]uint64{}

	for _, box := range t.Inputs {
		if err = addTokens(in, box.Tokens); err != nil {
			return err
		}
	}

	out := map[string]uint64{}

	for i := range t.Outputs {
		if err = addTokens(out, t.Outputs[i].Tokens); err != nil {
			return err
		}
	}

	// a transaction may mint tokens whose id is the id of its first input
	minted := t.Inputs[0].BoxID.String()

	for id, amount := range out {
		if id != minted && amount > in[id] {
			return errors.NewInvalidPreconditionError("outputs carry %d of token %s, inputs only %d", amount, id, in[id])
		}
	}

	return nil
}

func addTokens(sums map[string]uint64, tokens []model.Token) error {
	for _, token := range tokens {
		id := token.ID.String()

		sum, err := model.SumValues(sums[id], token.Amount)
		if err != nil {
			return errors.NewInvalidPreconditionError("amount of token %s", id, err)
		}

		sums[id] = sum
	}

	return nil
}

// CorrectBuild checks a freshly created bounty record.
func (v *Validator) CorrectBuild(out *model.Output) error {
	r, malformed, err := model.DecodeRecord(out)
	if err != nil {
		return reject(model.ActionCreate, "new record does not decode", err)
	}

	if len(malformed) > 0 {
		return reject(model.ActionCreate, "new record has malformed registers %v", malformed)
	}

	if r.TokenAmount != 1 {
		return reject(model.ActionCreate, "control token amount is %d", r.TokenAmount)
	}

	if r.Stats != (model.Stats{}) {
		return reject(model.ActionCreate, "new record starts with stats %s", r.Stats)
	}

	if r.Value < r.RewardAmount {
		return reject(model.ActionCreate, "value %d is below reward amount %d", r.Value, r.RewardAmount)
	}

	return nil
}

func (v *Validator) check(action model.Action, t *model.Transition, vc *Context) error {
	self, prev, err := v.self(action, t)
	if err != nil {
		return err
	}

	switch action {
	case model.ActionSubmitSolution:
		return v.checkSubmit(t, self, prev, vc)
	case model.ActionJudgeSubmission:
		return v.checkJudge(t, self, prev, vc)
	case model.ActionWithdrawReward:
		return v.checkWithdraw(t, prev, vc)
	case model.ActionRefundBounty:
		return v.checkRefund(t, prev, vc)
	case model.ActionAddFunds:
		return v.checkAddFunds(t, self, prev, vc)
	case model.ActionExtendDeadline:
		return v.checkExtendDeadline(t, self, prev, vc)
	case model.ActionUpdateMetadata:
		return v.checkUpdateMetadata(t, self, prev, vc)
	default:
		return errors.NewInvalidArgumentError("%q is not a bounty action", action)
	}
}

// self decodes the bounty being spent, which is always input 0.
func (v *Validator) self(action model.Action, t *model.Transition) (*model.Box, *model.BountyRecord, error) {
	if len(t.Inputs) == 0 {
		return nil, nil, reject(action, "transition spends nothing")
	}

	self := t.Inputs[0]

	prev, malformed, err := model.DecodeRecord(&self.Output)
	if err != nil {
		return nil, nil, reject(action, "input 0 is not a bounty record", err)
	}

	for _, id := range malformed {
		v.logger.Debugf("[Validator] bounty %s register %s is malformed, decoded as zero", prev.TokenID, id)
	}

	return self, prev, nil
}

// successor decodes output 0 as the next version of the bounty. It must run the same
// script, be fully well formed, and be the only output holding the control token.
func (v *Validator) successor(action model.Action, t *model.Transition, self *model.Box, prev *model.BountyRecord) (*model.BountyRecord, error) {
	if len(t.Outputs) == 0 {
		return nil, reject(action, "no successor output")
	}

	out := &t.Outputs[0]

	if !bytes.Equal(out.Script, self.Script) {
		return nil, reject(action, "successor runs a different script")
	}

	next, malformed, err := model.DecodeRecord(out)
	if err != nil {
		return nil, reject(action, "successor does not decode", err)
	}

	if len(malformed) > 0 {
		return nil, reject(action, "successor has malformed registers %v", malformed)
	}

	for i := 1; i < len(t.Outputs); i++ {
		if t.Outputs[i].TokenAmount(prev.TokenID) > 0 {
			return nil, reject(action, "control token leaks to output %d", i)
		}
	}

	return next, nil
}

// terminal checks that the control token is burned.
func (v *Validator) terminal(action model.Action, t *model.Transition, prev *model.BountyRecord) error {
	for i := range t.Outputs {
		if t.Outputs[i].TokenAmount(prev.TokenID) > 0 {
			return reject(action, "control token must be burned, output %d carries it", i)
		}
	}

	return nil
}

// replicated requires next to equal expected, which is prev with the changes the action
// allows already applied.
func replicated(action model.Action, expected, next *model.BountyRecord) error {
	if changed := diff(expected, next); len(changed) > 0 {
		return reject(action, "successor changes %s", strings.Join(changed, ", "))
	}

	return nil
}

func diff(a, b *model.BountyRecord) []string {
	var changed []string

	check := func(name string, equal bool) {
		if !equal {
			changed = append(changed, name)
		}
	}

	check("token id", a.TokenID == b.TokenID)
	check("token amount", a.TokenAmount == b.TokenAmount)
	check("value", a.Value == b.Value)
	check("deadline", a.Deadline == b.Deadline)
	check("min submissions", a.MinSubmissions == b.MinSubmissions)
	check("stats", a.Stats == b.Stats)
	check("reward amount", a.RewardAmount == b.RewardAmount)
	check("creator", bytes.Equal(a.CreatorPubKey, b.CreatorPubKey))
	check("content", bytes.Equal(a.Content, b.Content))
	check("script", a.Script().Equal(b.Script()))

	return changed
}

func (v *Validator) creatorSigned(action model.Action, prev *model.BountyRecord, vc *Context) error {
	if !vc.SignedBy(prev.CreatorPubKey) {
		return reject(action, "creator signature missing")
	}

	return nil
}

// judgment reads the judgment data input. Only judgments published by the creator count.
func (v *Validator) judgment(action model.Action, t *model.Transition, prev *model.BountyRecord) (*model.Judgment, error) {
	if len(t.DataInputs) == 0 {
		return nil, reject(action, "judgment data input missing")
	}

	box := t.DataInputs[0]

	if len(prev.CreatorPubKey) == 0 || !bytes.Equal(box.Script, model.PubKeyScript(prev.CreatorPubKey)) {
		return nil, reject(action, "judgment was not published by the creator")
	}

	j, err := model.DecodeJudgment(&box.Output)
	if err != nil {
		return nil, reject(action, "judgment data input does not decode", err)
	}

	if j.BountyID != prev.TokenID {
		return nil, reject(action, "judgment is for bounty %s", j.BountyID)
	}

	return j, nil
}

func reject(action model.Action, format string, params ...interface{}) error {
	return errors.New(errors.ERR_INVALID_PRECONDITION, fmt.Sprintf("[%s] %s", action, format), params...).WithData("action", string(action))
}
