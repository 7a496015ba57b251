package phabricator

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
)

func TestNew_Defaults(t *testing.T) {
	c := New(Config{BaseURL: "https://phab.example.org/"}, nil)

	require.NotNil(t, c.httpClient)
	require.NotNil(t, c.rateLimiter)
	require.NotNil(t, c.logger)
	assert.Equal(t, "https://phab.example.org", c.baseURL)
	assert.Equal(t, defaultUserMethod, c.userMethod)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}

func TestCall_SendsTokenAndParams(t *testing.T) {
	f, ts := newFakeConduit(t, map[string]conduitHandler{
		"conduit.ping": okBody(`{"result":"ok","error_code":null,"error_info":null}`),
	})

	c := newTestClient(ts.URL, CursorTruthy)

	params := url.Values{}
	params.Set("x", "1")

	raw, err := c.call(context.Background(), "conduit.ping", params)
	require.NoError(t, err)
	assert.JSONEq(t, `"ok"`, string(raw))

	calls := f.paramsFor("conduit.ping")
	require.Len(t, calls, 1)
	assert.Equal(t, testToken, calls[0].Get(paramToken))
	assert.Equal(t, "1", calls[0].Get("x"))
}

func TestCall_ErrorEnvelope(t *testing.T) {
	_, ts := newFakeConduit(t, nil)

	c := New(Config{BaseURL: ts.URL, APIToken: "wrong"}, nil)

	_, err := c.call(context.Background(), "conduit.ping", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAPI)

	var apiErr *apperrors.APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ERR-INVALID-AUTH", apiErr.Code)
	assert.Equal(t, "API token is invalid.", apiErr.Info)
}

func TestCall_BadStatus(t *testing.T) {
	_, ts := newFakeConduit(t, map[string]conduitHandler{
		"conduit.ping": func(url.Values) (int, string) {
			return http.StatusBadGateway, "<html>bad gateway</html>"
		},
	})

	_, err := newTestClient(ts.URL, CursorTruthy).call(context.Background(), "conduit.ping", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAPI)

	var apiErr *apperrors.APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestCall_MalformedEnvelope(t *testing.T) {
	_, ts := newFakeConduit(t, map[string]conduitHandler{
		"conduit.ping": okBody(`not json`),
	})

	_, err := newTestClient(ts.URL, CursorTruthy).call(context.Background(), "conduit.ping", nil)
	assert.ErrorIs(t, err, apperrors.ErrDataShape)
}

func TestCall_TransportError(t *testing.T) {
	_, ts := newFakeConduit(t, nil)
	ts.Close()

	_, err := newTestClient(ts.URL, CursorTruthy).call(context.Background(), "conduit.ping", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTransport)
	assert.NotErrorIs(t, err, apperrors.ErrAPI)
}

func TestCall_CanceledContext(t *testing.T) {
	_, ts := newFakeConduit(t, map[string]conduitHandler{
		"conduit.ping": okBody(`{"result":"ok"}`),
	})

	c := New(Config{BaseURL: ts.URL, APIToken: testToken, RPS: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.call(ctx, "conduit.ping", nil)
	assert.ErrorIs(t, err, apperrors.ErrTransport)
}
