// Package explorer is a Ledger backed by a ledger explorer's HTTP API.
package explorer

import (
	"context"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/bountiful-platform/bountiful/chaincfg"
	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/bountiful-platform/bountiful/util"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

const (
	heightKey = "height"

	defaultHeightCacheTTL = 10 * time.Second
	defaultPollInterval   = 5 * time.Second
)

type Client struct {
	logger         ulogger.Logger
	baseURL        string
	params         *chaincfg.Params
	requestTimeout time.Duration
	pollInterval   time.Duration
	heightCache    *ttlcache.Cache[string, int32]
	limiter        *rate.Limiter
}

func New(logger ulogger.Logger, tSettings *settings.Settings) (*Client, error) {
	explorerURL := tSettings.Ledger.ExplorerURL
	if explorerURL == nil {
		raw := tSettings.ChainCfgParams.ExplorerURL
		if raw == "" {
			return nil, errors.NewConfigurationError("ledger_explorerURL is required")
		}

		var err error
		if explorerURL, err = url.Parse(raw); err != nil {
			return nil, errors.NewConfigurationError("ledger_explorerURL %q", raw, err)
		}
	}

	heightTTL := tSettings.Ledger.HeightCacheTTL
	if heightTTL <= 0 {
		heightTTL = defaultHeightCacheTTL
	}

	pollInterval := tSettings.Bounty.ConfirmationPollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps := tSettings.Ledger.RequestsPerSecond; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}

	return &Client{
		logger:         logger,
		baseURL:        strings.TrimSuffix(explorerURL.String(), "/"),
		params:         tSettings.ChainCfgParams,
		requestTimeout: tSettings.Ledger.RequestTimeout,
		pollInterval:   pollInterval,
		heightCache: ttlcache.New[string, int32](
			ttlcache.WithTTL[string, int32](heightTTL),
			ttlcache.WithDisableTouchOnHit[string, int32](),
		),
		limiter: limiter,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, v interface{}) error {
	return c.do(ctx, path, nil, v)
}

func (c *Client) do(ctx context.Context, path string, body []byte, v interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.NewNetworkTimeoutError("explorer request to %s throttled past its deadline", path, err)
	}

	if c.requestTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	response, err := util.DoHTTPRequest(ctx, c.baseURL+path, body)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(response, v); err != nil {
		return errors.NewNetworkInvalidResponseError("explorer response to %s does not decode", path, err)
	}

	return nil
}

// FetchRecord returns the unspent box holding the control token of a bounty.
func (c *Client) FetchRecord(ctx context.Context, tokenID chainhash.Hash) (*model.Box, error) {
	var response boxesResponse

	if err := c.get(ctx, "/boxes/unspent/byTokenId/"+tokenID.String(), &response); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewRecordNotFoundError("bounty %s not found", tokenID, err)
		}

		return nil, err
	}

	for i := range response.Items {
		box, err := response.Items[i].Box()
		if err != nil {
			return nil, errors.NewEncodingError("explorer box %s", response.Items[i].BoxID, err)
		}

		switch model.ScriptTag(box.Script) {
		case model.ScriptTagBounty, model.ScriptTagMintGuard:
			return box, nil
		}
	}

	return nil, errors.NewRecordNotFoundError("bounty %s has no unspent record", tokenID)
}

func (c *Client) FetchBox(ctx context.Context, boxID chainhash.Hash) (*model.Box, error) {
	var response model.BoxJSON

	if err := c.get(ctx, "/boxes/"+boxID.String(), &response); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewRecordNotFoundError("box %s not found", boxID, err)
		}

		return nil, err
	}

	box, err := response.Box()
	if err != nil {
		return nil, errors.NewEncodingError("explorer box %s", boxID, err)
	}

	return box, nil
}

func (c *Client) UnspentByScript(ctx context.Context, script []byte) ([]*model.Box, error) {
	var response boxesResponse

	if err := c.get(ctx, "/boxes/unspent/byScript/"+hex.EncodeToString(script), &response); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}

	boxes := make([]*model.Box, 0, len(response.Items))

	for i := range response.Items {
		box, err := response.Items[i].Box()
		if err != nil {
			return nil, errors.NewEncodingError("explorer box %s", response.Items[i].BoxID, err)
		}

		boxes = append(boxes, box)
	}

	return boxes, nil
}

// CurrentHeight returns the explorer's height, cached for a few seconds.
func (c *Client) CurrentHeight(ctx context.Context) (int32, error) {
	if item := c.heightCache.Get(heightKey); item != nil {
		return item.Value(), nil
	}

	var response infoResponse
	if err := c.get(ctx, "/info", &response); err != nil {
		return 0, err
	}

	c.heightCache.Set(heightKey, response.Height, ttlcache.DefaultTTL)

	return response.Height, nil
}

// Submit broadcasts tx. A transaction the ledger refuses is a LedgerRejected error
// carrying the explorer's reason.
func (c *Client) Submit(ctx context.Context, tx *model.SignedTx) (chainhash.Hash, error) {
	body, err := encodeTx(tx, c.params.MinerFeeScript)
	if err != nil {
		return chainhash.Hash{}, errors.NewEncodingError("transaction %s", tx.ID(), err)
	}

	var response submitResponse

	if err = c.do(ctx, "/mempool/transactions/submit", body, &response); err != nil {
		if errors.Is(err, errors.ErrServiceError) {
			return chainhash.Hash{}, errors.NewLedgerRejectedError("transaction %s rejected", tx.ID(), err)
		}

		return chainhash.Hash{}, err
	}

	txID := tx.ID()

	if response.ID != "" && response.ID != txID.String() {
		c.logger.Warnf("[Explorer] submitted %s, explorer reports %s", txID, response.ID)
	}

	c.heightCache.Delete(heightKey)

	return txID, nil
}

// AwaitConfirmation polls until txID is included and returns its first output.
func (c *Client) AwaitConfirmation(ctx context.Context, txID chainhash.Hash, timeout time.Duration) (*model.Box, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var response transactionResponse

		err := c.get(ctx, "/transactions/"+txID.String(), &response)
		if err != nil && ctx.Err() != nil {
			return nil, errors.NewTimeoutError("transaction %s not confirmed after %s", txID, timeout, err)
		}

		switch {
		case err == nil && response.InclusionHeight > 0:
			if len(response.Outputs) == 0 {
				return nil, errors.NewNetworkInvalidResponseError("transaction %s has no outputs", txID)
			}

			box, err := response.Outputs[0].Box()
			if err != nil {
				return nil, errors.NewEncodingError("explorer box of transaction %s", txID, err)
			}

			c.heightCache.Delete(heightKey)

			return box, nil

		case err == nil, errors.Is(err, errors.ErrNotFound):
			c.logger.Debugf("[Explorer] transaction %s not confirmed yet", txID)

		case errors.IsRetryableError(err):
			c.logger.Warnf("[Explorer] polling transaction %s: %v", txID, err)

		default:
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, errors.NewTimeoutError("transaction %s not confirmed after %s", txID, timeout, ctx.Err())
		case <-ticker.C:
		}
	}
}
