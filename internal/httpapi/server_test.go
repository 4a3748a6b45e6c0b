package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/chat"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

type stubService struct {
	result   chat.Result
	err      error
	clearErr error

	gotQuery   string
	gotSession string
	cleared    []string
}

func (s *stubService) Answer(ctx context.Context, query, sessionID string) (chat.Result, error) {
	s.gotQuery = query
	s.gotSession = sessionID
	return s.result, s.err
}

func (s *stubService) ClearHistory(ctx context.Context, sessionID string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = append(s.cleared, sessionID)
	return nil
}

type stubProbe struct{ ready bool }

func (p stubProbe) IsReady(ctx context.Context) bool { return p.ready }

func newTestServer(svc *stubService, ready bool) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(svc, stubProbe{ready: ready}, nil, logger)
	return httptest.NewServer(s.Handler())
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func TestChatEndpoint(t *testing.T) {
	svc := &stubService{result: chat.Result{Answer: "hi there", Intent: "Greeting", ChunksUsed: 2}}
	ts := newTestServer(svc, true)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/chat", map[string]string{"query": "hello", "session_id": "s1"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "hi there", got.Answer)
	assert.Equal(t, "Greeting", got.Intent)
	assert.Equal(t, 2, got.ChunksUsed)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "hello", svc.gotQuery)
	assert.Equal(t, "s1", svc.gotSession)
}

func TestChatEndpointRequiresQuery(t *testing.T) {
	ts := newTestServer(&stubService{}, true)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/chat", map[string]string{"session_id": "s1"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatEndpointRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(&stubService{}, true)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/chat", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatEndpointNotReadyMapsTo503(t *testing.T) {
	svc := &stubService{err: fault.New(fault.KindNotReady, "index empty")}
	ts := newTestServer(svc, true)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/chat", map[string]string{"query": "hello"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestChatEndpointFailureMapsTo500(t *testing.T) {
	svc := &stubService{err: fault.New(fault.KindApplication, "generation failed")}
	ts := newTestServer(svc, true)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/chat", map[string]string{"query": "hello"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var got errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "internal error", got.Error)
}

func TestClearEndpoint(t *testing.T) {
	svc := &stubService{}
	ts := newTestServer(svc, true)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/chat/clear", map[string]string{"session_id": "s1"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"s1"}, svc.cleared)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(&stubService{}, false)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadyz(t *testing.T) {
	ts := newTestServer(&stubService{}, false)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	ts2 := newTestServer(&stubService{}, true)
	defer ts2.Close()
	resp2, err := http.Get(ts2.URL + "/readyz")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
