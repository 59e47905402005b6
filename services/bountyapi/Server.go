// Package bountyapi serves a read-only HTTP view of the bounties in the record store.
package bountyapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/stores/bounty"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/bountiful-platform/bountiful/util"
	"github.com/bountiful-platform/bountiful/util/health"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultAPIPrefix = "/api/v1"

// HeightReader is the part of the ledger the API needs to report live status.
type HeightReader interface {
	CurrentHeight(ctx context.Context) (int32, error)
}

type Server struct {
	logger   ulogger.Logger
	settings *settings.Settings
	e        *echo.Echo
	store    bounty.Store
	ledger   HeightReader
}

// New creates the API. ledger may be nil, in which case statuses are served as stored.
func New(logger ulogger.Logger, tSettings *settings.Settings, store bounty.Store, ledger HeightReader) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET},
	}))

	return &Server{
		logger:   logger,
		settings: tSettings,
		e:        e,
		store:    store,
		ledger:   ledger,
	}
}

func (s *Server) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	if checkLiveness {
		return http.StatusOK, "OK", nil
	}

	checks := make([]health.Check, 0, 2)

	if s.store != nil {
		checks = append(checks, health.Check{Name: "BountyStore", Check: s.store.Health})
	}

	if s.ledger != nil {
		checks = append(checks, health.Check{Name: "Ledger", Check: func(ctx context.Context, _ bool) (int, string, error) {
			height, err := s.ledger.CurrentHeight(ctx)
			if err != nil {
				return http.StatusServiceUnavailable, "ledger unreachable", err
			}

			return http.StatusOK, "height " + strconv.FormatInt(int64(height), 10), nil
		}})
	}

	return health.CheckAll(ctx, checkLiveness, checks)
}

func (s *Server) Init(_ context.Context) error {
	prefix := strings.TrimSuffix(s.settings.API.APIPrefix, "/")
	if prefix == "" {
		prefix = defaultAPIPrefix
	}

	s.e.GET("/health", s.healthHandler)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.e.Group(prefix)
	api.GET("/bounty/:id", s.bountyHandler)
	api.GET("/bounty/:id/history", s.historyHandler)
	api.GET("/fees", s.feesHandler)

	return nil
}

func (s *Server) Start(ctx context.Context) error {
	addr := s.settings.API.HTTPListenAddress
	if addr == "" {
		return errors.NewConfigurationError("api_httpListenAddress is required")
	}

	s.logger.Infof("[BountyAPI] HTTP service listening on %s", addr)

	go func() {
		<-ctx.Done()
		s.logger.Infof("[BountyAPI] HTTP service shutting down")

		if err := s.e.Shutdown(context.Background()); err != nil {
			s.logger.Errorf("[BountyAPI] HTTP service shutdown error: %s", err)
		}
	}()

	if err := s.e.Start(addr); err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) sendError(c echo.Context, err error) error {
	status := http.StatusInternalServerError

	var tErr *errors.Error
	if errors.As(err, &tErr) {
		status = errors.ErrorCodeToHTTPStatus(tErr.Code())
	}

	if status == http.StatusInternalServerError {
		s.logger.Errorf("[BountyAPI] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	return c.JSON(status, map[string]string{"error": err.Error()})
}

func (s *Server) healthHandler(c echo.Context) error {
	status, body, err := s.Health(c.Request().Context(), c.QueryParam("liveness") == "true")
	if err != nil {
		return s.sendError(c, err)
	}

	return c.Blob(status, echo.MIMEApplicationJSONCharsetUTF8, []byte(body))
}

func tokenIDParam(c echo.Context) (chainhash.Hash, error) {
	tokenID, err := chainhash.NewHashFromStr(c.Param("id"))
	if err != nil {
		return chainhash.Hash{}, errors.NewInvalidArgumentError("bounty id %q", c.Param("id"), err)
	}

	return *tokenID, nil
}

// bountyHandler serves the newest version of a bounty. The status of a live bounty is
// brought up to the current height.
func (s *Server) bountyHandler(c echo.Context) error {
	ctx := c.Request().Context()

	tokenID, err := tokenIDParam(c)
	if err != nil {
		return s.sendError(c, err)
	}

	entry, err := s.store.Latest(ctx, tokenID)
	if err != nil {
		return s.sendError(c, err)
	}

	view := newEntryView(entry)

	if s.ledger != nil && !entry.Spent() && view.Record != nil {
		height, err := s.ledger.CurrentHeight(ctx)
		if err != nil {
			s.logger.Warnf("[BountyAPI] serving stored status of bounty %s: %v", tokenID, err)
		} else if statusFSM := model.NewStatusFSM(entry.Status); height > view.Record.Deadline && statusFSM.Can(model.EventExpire) {
			if err = statusFSM.Event(ctx, model.EventExpire); err == nil {
				view.Status = model.Status(statusFSM.Current())
			}
		}
	}

	return c.JSON(http.StatusOK, view)
}

func (s *Server) historyHandler(c echo.Context) error {
	tokenID, err := tokenIDParam(c)
	if err != nil {
		return s.sendError(c, err)
	}

	entries, err := s.store.History(c.Request().Context(), tokenID)
	if err != nil {
		return s.sendError(c, err)
	}

	views := make([]*EntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, newEntryView(entry))
	}

	return c.JSON(http.StatusOK, views)
}

// feesHandler previews how a reward splits at a fee rate in tenths of a percent.
func (s *Server) feesHandler(c echo.Context) error {
	reward, err := strconv.ParseUint(c.QueryParam("reward"), 10, 64)
	if err != nil {
		return s.sendError(c, errors.NewInvalidArgumentError("reward %q", c.QueryParam("reward"), err))
	}

	rate := s.settings.Bounty.DevFeeRate

	if raw := c.QueryParam("rate"); raw != "" {
		if rate, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return s.sendError(c, errors.NewInvalidArgumentError("rate %q", raw, err))
		}
	}

	split, err := util.SplitReward(s.settings.ChainCfgParams, reward, rate)
	if err != nil {
		return s.sendError(c, err)
	}

	return c.JSON(http.StatusOK, FeesView{
		Reward:   reward,
		Rate:     rate,
		Winner:   split.Winner,
		Platform: split.Platform,
		Miner:    split.Miner,
	})
}
