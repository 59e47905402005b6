// Package factory opens the bounty store a URL points at.
package factory

import (
	"net/url"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/stores/bounty"
	"github.com/bountiful-platform/bountiful/stores/bounty/memory"
	"github.com/bountiful-platform/bountiful/stores/bounty/sql"
	"github.com/bountiful-platform/bountiful/ulogger"
)

func NewStore(logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (bounty.Store, error) {
	if storeURL == nil {
		return nil, errors.NewConfigurationError("bountystore is not set")
	}

	switch storeURL.Scheme {
	case "memory":
		return memory.New(logger), nil
	case "postgres", "sqlite", "sqlitememory":
		store, err := sql.New(logger, tSettings, storeURL)
		if err != nil {
			return nil, err
		}

		return store, nil
	}

	return nil, errors.NewConfigurationError("unknown bountystore scheme: %s", storeURL.Scheme)
}
