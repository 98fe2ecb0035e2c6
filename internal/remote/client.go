// Package remote talks to the account store service over HTTP. The
// snapshot API is a whole-blob contract: fetch returns the full
// snapshot, replace overwrites it, keyed by the account's public key.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/discussions-app/core/internal/account"
	"github.com/discussions-app/core/internal/common"
	"github.com/discussions-app/core/internal/cryptox"
	"github.com/discussions-app/core/internal/logging"
)

// ErrUnavailable wraps transport failures and server errors so callers
// can treat them uniformly as "try again later".
var ErrUnavailable = errors.New("account store unavailable")

const requestTimeout = 12 * time.Second

// test seam
var nowFunc = time.Now

// Client is an authenticated HTTP client for one account identity.
// It satisfies the reconciliation engine's RemoteStore contract.
type Client struct {
	baseURL string
	keys    *cryptox.AccountKeys
	http    *http.Client
	log     logging.Logger
}

func NewClient(baseURL string, keys *cryptox.AccountKeys, log logging.Logger) *Client {
	c := &Client{baseURL: baseURL, keys: keys, log: log}
	c.http = &http.Client{
		Timeout:   requestTimeout,
		Transport: newAuthTransport(nil, c.authenticate),
	}
	return c
}

type authRequest struct {
	PublicKey string `json:"public_key"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *Client) authenticate(ctx context.Context) (string, error) {
	ts := nowFunc().Unix()
	pub := c.keys.PublicHex()
	body, err := json.Marshal(authRequest{
		PublicKey: pub,
		Timestamp: ts,
		Signature: c.keys.Sign(common.ChallengeMessage(pub, ts)),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/auth", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth rejected: %w", statusError(resp))
	}
	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}
	return out.AccessToken, nil
}

// Register creates the account server-side with an empty initial
// snapshot. Safe to call for an existing account.
func (c *Client) Register(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/v1/accounts", nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		return statusError(resp)
	}
	return nil
}

// Fetch retrieves the account snapshot. A missing snapshot is reported
// as (nil, nil).
func (c *Client) Fetch(ctx context.Context) (*account.Snapshot, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/snapshot", nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, statusError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	snap, err := account.DecodeSnapshot(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// Replace overwrites the whole remote snapshot.
func (c *Client) Replace(ctx context.Context, snap *account.Snapshot) error {
	raw, err := account.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPut, "/v1/snapshot", raw)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusNoContent {
		return statusError(resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
