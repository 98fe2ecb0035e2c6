package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/discussions-app/core/internal/common"
)

// loginFunc performs the signature challenge and returns a fresh access
// token.
type loginFunc func(ctx context.Context) (string, error)

// authTransport injects the bearer token into every request and
// transparently re-authenticates once when the server signals an
// expired token.
type authTransport struct {
	base  http.RoundTripper
	login loginFunc

	mu    sync.Mutex
	token string
}

func newAuthTransport(base http.RoundTripper, login loginFunc) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{base: base, login: login}
}

func (t *authTransport) currentToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.token != "" {
		return t.token, nil
	}
	token, err := t.login(ctx)
	if err != nil {
		return "", err
	}
	t.token = token
	return token, nil
}

// refreshToken discards stale and logs in again. The stale argument
// keeps a racing request from discarding a token another request just
// obtained.
func (t *authTransport) refreshToken(ctx context.Context, stale string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.token != stale {
		return t.token, nil
	}
	token, err := t.login(ctx)
	if err != nil {
		return "", err
	}
	t.token = token
	return token, nil
}

func (t *authTransport) send(req *http.Request, token string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	clone.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	return t.base.RoundTrip(clone)
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	token, err := t.currentToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	resp, err := t.send(req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	token, err = t.refreshToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("re-authentication failed: %w", err)
	}
	return t.send(req, token)
}
