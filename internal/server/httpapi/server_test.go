package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discussions-app/core/internal/common"
	"github.com/discussions-app/core/internal/cryptox"
	"github.com/discussions-app/core/internal/logging"
	sc "github.com/discussions-app/core/internal/server/config"
	"github.com/discussions-app/core/internal/server/repositories/accounts"
	"github.com/discussions-app/core/internal/server/services"
)

func newTestServer(t *testing.T) (*httptest.Server, *cryptox.AccountKeys) {
	t.Helper()

	cfg := &sc.Config{}
	cfg.LoadDefaults()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := services.NewAccountService(accounts.NewInMemoryRepository(), cfg, nil, log)

	reg := prometheus.NewRegistry()
	srv := NewServerWithRegistry(cfg, svc, log, reg, reg)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	keys, err := cryptox.AccountKeysFromMaster(bytes.Repeat([]byte{0x05}, 32))
	require.NoError(t, err)
	return ts, keys
}

func obtainToken(t *testing.T, ts *httptest.Server, keys *cryptox.AccountKeys) string {
	t.Helper()
	pub := keys.PublicHex()
	now := time.Now().Unix()
	body, err := json.Marshal(authRequest{
		PublicKey: pub,
		Timestamp: now,
		Signature: keys.Sign(common.ChallengeMessage(pub, now)),
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/v1/auth", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func doAuthed(t *testing.T, ts *httptest.Server, token, method, path string, body []byte) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAuth_BadSignatureRejected(t *testing.T) {
	ts, keys := newTestServer(t)

	pub := keys.PublicHex()
	now := time.Now().Unix()
	body, _ := json.Marshal(authRequest{
		PublicKey: pub,
		Timestamp: now,
		Signature: keys.Sign([]byte("wrong message")),
	})

	resp, err := http.Post(ts.URL+"/v1/auth", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuth_StaleTimestampRejected(t *testing.T) {
	ts, keys := newTestServer(t)

	pub := keys.PublicHex()
	old := time.Now().Add(-time.Hour).Unix()
	body, _ := json.Marshal(authRequest{
		PublicKey: pub,
		Timestamp: old,
		Signature: keys.Sign(common.ChallengeMessage(pub, old)),
	})

	resp, err := http.Post(ts.URL+"/v1/auth", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSnapshot_RequiresToken(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2 := doAuthed(t, ts, "garbage", http.MethodGet, "/v1/snapshot", nil)
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestSnapshotLifecycle(t *testing.T) {
	ts, keys := newTestServer(t)
	token := obtainToken(t, ts, keys)

	// unregistered account has no snapshot
	resp := doAuthed(t, ts, token, http.MethodGet, "/v1/snapshot", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// register and fetch the empty initial snapshot
	resp = doAuthed(t, ts, token, http.MethodPost, "/v1/accounts", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doAuthed(t, ts, token, http.MethodPost, "/v1/accounts", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doAuthed(t, ts, token, http.MethodGet, "/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	blob, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(blob))

	// replace and read back
	snapshot := `{"versions":{"following":1},"following":{"pub2":"bob"}}`
	resp = doAuthed(t, ts, token, http.MethodPut, "/v1/snapshot", []byte(snapshot))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doAuthed(t, ts, token, http.MethodGet, "/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	blob, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, snapshot, string(blob))
}

func TestPutSnapshot_MalformedRejected(t *testing.T) {
	ts, keys := newTestServer(t)
	token := obtainToken(t, ts, keys)

	resp := doAuthed(t, ts, token, http.MethodPost, "/v1/accounts", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doAuthed(t, ts, token, http.MethodPut, "/v1/snapshot", []byte("not json"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutSnapshot_OversizeRejected(t *testing.T) {
	ts, keys := newTestServer(t)
	token := obtainToken(t, ts, keys)

	resp := doAuthed(t, ts, token, http.MethodPost, "/v1/accounts", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	huge := []byte(`{"versions":{},"padding":"` + strings.Repeat("x", maxSnapshotSize) + `"}`)
	resp = doAuthed(t, ts, token, http.MethodPut, "/v1/snapshot", huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestMetricsEndpointExposed(t *testing.T) {
	ts, keys := newTestServer(t)
	token := obtainToken(t, ts, keys)

	resp := doAuthed(t, ts, token, http.MethodPost, "/v1/accounts", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	body, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "accountstore_auth_attempts_total"))
}
