package settings

import (
	"net/url"
	"strings"
	"time"

	"github.com/bountiful-platform/bountiful/errors"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	"github.com/ordishs/gocore"
)

func getString(key, defaultValue string) string {
	value, found := gocore.Config().Get(key)
	if !found {
		return defaultValue
	}

	return value
}

func getInt(key string, defaultValue int) int {
	value, found := gocore.Config().GetInt(key)
	if !found {
		return defaultValue
	}

	return value
}

func getUint64(key string, defaultValue uint64) uint64 {
	value, found := gocore.Config().GetInt(key)
	if !found {
		return defaultValue
	}

	v, err := safeconversion.IntToUint64(value)
	if err != nil {
		panic(errors.NewConfigurationError("setting %s must not be negative", key, err))
	}

	return v
}

func getURL(key, defaultValue string) *url.URL {
	value, _, _ := gocore.Config().GetURL(key, defaultValue)

	return value
}

func getBool(key string, defaultValue bool) bool {
	return gocore.Config().GetBool(key, defaultValue)
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, found := gocore.Config().Get(key)
	if !found || strings.TrimSpace(value) == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		panic(errors.NewConfigurationError("setting %s is not a duration", key, err))
	}

	return d
}
