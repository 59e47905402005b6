package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context, bool) (int, string, error) {
	return http.StatusOK, "fine", nil
}

func TestCheckAll(t *testing.T) {
	status, body, err := CheckAll(context.Background(), false, []Check{{Name: "store", Check: ok}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &parsed))
	assert.Len(t, parsed["dependencies"], 1)
}

func TestCheckAllFailing(t *testing.T) {
	failing := func(context.Context, bool) (int, string, error) {
		return http.StatusServiceUnavailable, `explorer "down"`, errors.New("dial tcp: refused")
	}

	status, body, err := CheckAll(context.Background(), false, []Check{
		{Name: "store", Check: ok},
		{Name: "ledger", Check: failing},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &parsed), "messages are quoted")
	assert.Contains(t, body, "dial tcp")
}
