package util

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/ordishs/gocore"
)

// httpRequestTimeout applies when the caller's context carries no deadline.
var httpRequestTimeout = func() time.Duration {
	ms, _ := gocore.Config().GetInt("http_timeout", 60_000)
	return time.Duration(ms) * time.Millisecond
}()

// DoHTTPRequest performs a GET, or a JSON POST when requestBody is given, and returns
// the response body. A 404 is a NotFoundError, other non 2xx statuses are service
// errors, and transport failures are network errors so callers can retry them.
func DoHTTPRequest(ctx context.Context, url string, requestBody ...[]byte) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancelFn context.CancelFunc

		ctx, cancelFn = context.WithTimeout(ctx, httpRequestTimeout)
		defer cancelFn()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("failed to create http request", err)
	}

	if len(requestBody) > 0 && requestBody[0] != nil {
		req.Body = io.NopCloser(bytes.NewReader(requestBody[0]))
		req.Method = http.MethodPost
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewNetworkTimeoutError("http request [%s] timed out", url, err)
		}

		return nil, errors.NewNetworkError("failed to do http request [%s]", url, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewNetworkTimeoutError("http request [%s] timed out while reading body", url, err)
		}

		return nil, errors.NewNetworkInvalidResponseError("http request [%s] failed to read body", url, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NewNotFoundError("http request [%s] returned status code [%d] with body [%s]", url, resp.StatusCode, string(body))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, errors.NewServiceUnavailableError("http request [%s] returned status code [%d] with body [%s]", url, resp.StatusCode, string(body))
	default:
		return nil, errors.NewServiceError("http request [%s] returned status code [%d] with body [%s]", url, resp.StatusCode, string(body))
	}

	if resp.Header.Get("Content-Type") == "text/html" {
		return nil, errors.NewNetworkInvalidResponseError("http request [%s] returned HTML - assume bad URL", url)
	}

	return body, nil
}
