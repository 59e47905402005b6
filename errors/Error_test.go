package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewCustomError(t *testing.T) {
	err := New(ERR_RECORD_NOT_FOUND, "bounty not found")
	require.NotNil(t, err)
	require.Equal(t, ERR_RECORD_NOT_FOUND, err.Code())
	require.Equal(t, "bounty not found", err.Message())

	secondErr := New(ERR_INVALID_ARGUMENT, "[Orchestrator][%s] failed to load bounty: ", "_test_string_", err)
	thirdErr := New(ERR_STALE_RECORD, "[Orchestrator][%s] consumption race lost: ", "_test_string_", secondErr)
	anotherErr := New(ERR_STALE_RECORD, "another stale record")
	fourthErr := New(ERR_SERVICE_ERROR, "older error: ", thirdErr)
	fifthErr := New(ERR_LEDGER_REJECTED, "ledger rejected", fourthErr)

	require.True(t, anotherErr.Is(thirdErr))
	require.True(t, fourthErr.Is(New(ERR_STALE_RECORD, "")))
	require.True(t, fourthErr.Is(ErrStaleRecord))

	require.True(t, fourthErr.Is(err))
	require.True(t, fifthErr.Is(thirdErr))
	require.True(t, fifthErr.Is(err))

	require.False(t, anotherErr.Is(fourthErr))
	require.False(t, fifthErr.Is(ErrDustOutput))
}

func Test_FmtErrorCustomError(t *testing.T) {
	err := New(ERR_NOT_FOUND, "resource not found")

	fmtError := fmt.Errorf("error: %w", err)
	secondErr := New(ERR_INVALID_ARGUMENT, "[Builder][%s] failed: ", "_test_string_", fmtError)
	require.NotNil(t, secondErr)

	// wrapping through fmt flattens the chain
	require.False(t, secondErr.Is(err))

	altErr := New(ERR_INVALID_ARGUMENT, "invalid argument", err)
	require.True(t, secondErr.Is(altErr))
}

func Test_ErrorIs(t *testing.T) {
	codes := []ERR{
		ERR_UNKNOWN,
		ERR_INVALID_ARGUMENT,
		ERR_NOT_FOUND,
		ERR_INVALID_PRECONDITION,
		ERR_DUST_OUTPUT,
		ERR_RECORD_NOT_FOUND,
		ERR_STALE_RECORD,
		ERR_ENCODING,
		ERR_LEDGER_REJECTED,
	}

	for _, code := range codes {
		t.Run(code.String(), func(t *testing.T) {
			err := New(code, "some message")
			assert.True(t, errors.Is(err, New(code, "")))
		})
	}
}

func Test_ErrorWrapWithAdditionalContext(t *testing.T) {
	originalErr := New(ERR_DUST_OUTPUT, "winner output below threshold")
	wrappedErr := New(ERR_INVALID_PRECONDITION, "withdraw rejected", originalErr)

	require.True(t, errors.Is(wrappedErr, originalErr))
	require.True(t, strings.Contains(wrappedErr.Error(), "withdraw rejected"))
	require.True(t, strings.Contains(wrappedErr.Error(), "winner output below threshold"))
}

func Test_ErrorEquality(t *testing.T) {
	err1 := New(ERR_NOT_FOUND, "resource not found")

	assert.True(t, err1.Is(New(ERR_NOT_FOUND, "resource not found")))
	assert.True(t, err1.Is(New(ERR_NOT_FOUND, "something else")))
	assert.False(t, err1.Is(New(ERR_INVALID_ARGUMENT, "resource not found")))
}

func Test_InvalidCode(t *testing.T) {
	err := New(ERR(999), "whatever")
	assert.Equal(t, "invalid error code", err.Message())
	assert.Equal(t, "ERR(999)", err.Code().Enum())
}

func Test_ErrorData(t *testing.T) {
	err := New(ERR_STALE_RECORD, "lost race").WithData("bounty", "abc")

	assert.Equal(t, "abc", err.GetData("bounty"))
	assert.Nil(t, err.GetData("missing"))
	assert.Equal(t, "Error: STALE_RECORD (error code: 23), Message: lost race, Data: bounty=abc", err.Error())

	decoded, decodeErr := GetErrorData(err.Data().EncodeErrorData())
	require.NoError(t, decodeErr)
	assert.Equal(t, "abc", decoded.GetData("bounty"))
}

func Test_AsData(t *testing.T) {
	inner := New(ERR_LEDGER_REJECTED, "script failure").WithData("txid", "ff")
	outer := New(ERR_SERVICE_ERROR, "submit failed", inner)

	var data *ErrData
	require.True(t, AsData(outer, &data))
	assert.Equal(t, "ff", data.GetData("txid"))
}

func Test_As(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewEncodingError("bad register"))

	var tErr *Error
	require.True(t, As(err, &tErr))
	assert.Equal(t, ERR_ENCODING, tErr.Code())
}

func Test_ErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code   ERR
		status int
	}{
		{ERR_INVALID_PRECONDITION, http.StatusBadRequest},
		{ERR_DUST_OUTPUT, http.StatusBadRequest},
		{ERR_RECORD_NOT_FOUND, http.StatusNotFound},
		{ERR_STALE_RECORD, http.StatusConflict},
		{ERR_ENCODING, http.StatusUnprocessableEntity},
		{ERR_LEDGER_REJECTED, http.StatusUnprocessableEntity},
		{ERR_SERVICE_UNAVAILABLE, http.StatusServiceUnavailable},
		{ERR_NETWORK_TIMEOUT, http.StatusGatewayTimeout},
		{ERR_STORAGE_ERROR, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.status, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func Test_JoinWithMultipleErrs(t *testing.T) {
	err1 := New(ERR_NOT_FOUND, "not found")
	err2 := New(ERR_DUST_OUTPUT, "dust")

	joinedErr := Join(err1, nil, err2)
	require.NotNil(t, joinedErr)
	require.Equal(t, "Error: NOT_FOUND (error code: 2), Message: not found, Error: DUST_OUTPUT (error code: 21), Message: dust", joinedErr.Error())

	require.NoError(t, Join(nil, nil))
}

func TestErrorString(t *testing.T) {
	err := errors.New("some error")

	thisErr := NewStorageError("failed to store bounty [%s:%d]", "abc", 2, err)

	assert.Equal(t, "Error: STORAGE_ERROR (error code: 51), Message: failed to store bounty [abc:2], Wrapped err: Error: ERROR (error code: 9), Message: some error", thisErr.Error())
}
