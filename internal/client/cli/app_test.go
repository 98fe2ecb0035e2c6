package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discussions-app/core/internal/client/config"
	"github.com/discussions-app/core/internal/wallet"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.CacheDSN = ":memory:"

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { app.db.Close() })

	var out bytes.Buffer
	app.out = &out
	return app, &out
}

func TestParseAmount(t *testing.T) {
	app, out := newTestApp(t)

	q, ok := app.parseAmount("10.000")
	require.True(t, ok)
	assert.Equal(t, "10.000 ATMOS", q.String())

	_, ok = app.parseAmount("abc")
	assert.False(t, ok)
	assert.Contains(t, out.String(), "bad amount")
}

func TestDefaultScheduleIsUsable(t *testing.T) {
	principal, err := wallet.ParseQuantity("10.000 ATMOS")
	require.NoError(t, err)

	fee, total, err := wallet.FeeFromPrincipal(principal, defaultSchedule())
	require.NoError(t, err)
	assert.Equal(t, "0.300 ATMOS", fee.String())
	assert.Equal(t, "10.300 ATMOS", total.String())
}

func TestCommandsRequireLogin(t *testing.T) {
	app, out := newTestApp(t)

	app.transfer(context.Background(), []string{"1.000", "alice"})
	assert.Contains(t, out.String(), "Log in first")

	out.Reset()
	app.follow(context.Background(), []string{"pub", "alice"})
	assert.Contains(t, out.String(), "Log in first")
}

func TestPending_EmptyAndUnknownSettle(t *testing.T) {
	app, out := newTestApp(t)

	app.pending(context.Background())
	assert.Contains(t, out.String(), "Nothing waiting for approval")

	out.Reset()
	app.cancel(context.Background(), []string{"nope"})
	assert.Contains(t, out.String(), "No such pending transaction")
}

func TestApprove_UnknownRequest(t *testing.T) {
	app, out := newTestApp(t)

	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) { return []byte("pw"), nil }

	app.approve(context.Background(), []string{"nope"})
	assert.Contains(t, out.String(), "No such pending transaction")
}

func TestGetStatus_LoggedOut(t *testing.T) {
	app, _ := newTestApp(t)
	assert.Equal(t, "", app.getStatus())
}
