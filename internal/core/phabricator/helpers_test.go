package phabricator

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const (
	testToken         = "api-testtoken"
	failedToWriteResp = "failed to write response: %v"
)

type conduitHandler func(params url.Values) (int, string)

// fakeConduit serves /api/<method> from a handler table and records calls.
type fakeConduit struct {
	t        *testing.T
	mu       sync.Mutex
	handlers map[string]conduitHandler
	calls    []url.Values
	methods  []string
}

func newFakeConduit(t *testing.T, handlers map[string]conduitHandler) (*fakeConduit, *httptest.Server) {
	t.Helper()

	f := &fakeConduit{t: t, handlers: handlers}
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)

	return f, ts
}

func (f *fakeConduit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, apiPath)
	params := r.URL.Query()

	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.methods = append(f.methods, method)
	f.mu.Unlock()

	if params.Get(paramToken) != testToken {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"result":null,"error_code":"ERR-INVALID-AUTH","error_info":"API token is invalid."}`))

		return
	}

	handler, ok := f.handlers[method]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no such method"))

		return
	}

	status, body := handler(params)
	w.WriteHeader(status)

	if _, err := w.Write([]byte(body)); err != nil {
		f.t.Errorf(failedToWriteResp, err)
	}
}

func (f *fakeConduit) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0

	for _, m := range f.methods {
		if m == method {
			n++
		}
	}

	return n
}

func (f *fakeConduit) paramsFor(method string) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []url.Values

	for i, m := range f.methods {
		if m == method {
			out = append(out, f.calls[i])
		}
	}

	return out
}

func newTestClient(baseURL string, mode CursorMode) *Client {
	return New(Config{BaseURL: baseURL, APIToken: testToken, CursorMode: mode}, nil)
}

func okBody(body string) conduitHandler {
	return func(url.Values) (int, string) {
		return http.StatusOK, body
	}
}
