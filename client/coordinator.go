package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrSessionEnded is returned once the coordinator's session is dead: a
// rotation failed terminally and no further refresh can succeed. The owner
// must run a fresh login.
var ErrSessionEnded = errors.New("session ended")

// Credentials is the client-held credential set: the access token presented
// on requests plus the session ID and secret needed to rotate it.
type Credentials struct {
	AccessToken string
	SessionID   string
	Secret      string
}

// RotateFunc performs one rotation round trip against the auth service and
// returns the replacement credentials. An error is treated as terminal for
// the session, so implementations should retry transient transport failures
// internally before giving up.
type RotateFunc func(ctx context.Context, sessionID, secret string) (Credentials, error)

// Coordinator serializes credential refresh across concurrent request
// goroutines. When several callers observe an expired access token at once,
// exactly one rotation round trip runs; the rest wait for its result. This
// matters because the server treats a second rotation with the same secret
// as theft and destroys the session.
type Coordinator struct {
	rotate       RotateFunc
	onSessionEnd func(error)

	group singleflight.Group

	mu    sync.Mutex
	creds Credentials
	ended bool
}

// Option configures a [Coordinator].
type Option func(*Coordinator)

// WithSessionEndHook registers a callback invoked once when the session
// becomes unrecoverable, with the rotation error that killed it.
func WithSessionEndHook(fn func(error)) Option {
	return func(c *Coordinator) {
		c.onSessionEnd = fn
	}
}

// NewCoordinator creates a coordinator seeded with the credentials from a
// fresh login.
func NewCoordinator(initial Credentials, rotate RotateFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		rotate: rotate,
		creds:  initial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the credential set to present on the next request.
func (c *Coordinator) Current() (Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return Credentials{}, ErrSessionEnded
	}
	return c.creds, nil
}

// Refresh exchanges stale credentials for fresh ones. Callers pass the
// credential set that just failed; if another goroutine already rotated past
// it, the newer set is returned without a round trip. Otherwise all callers
// holding the same stale set share a single rotation.
func (c *Coordinator) Refresh(ctx context.Context, stale Credentials) (Credentials, error) {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return Credentials{}, ErrSessionEnded
	}
	if c.creds.Secret != stale.Secret {
		// Already rotated by someone else.
		fresh := c.creds
		c.mu.Unlock()
		return fresh, nil
	}
	c.mu.Unlock()

	// Key on the stale secret so callers racing on the same generation
	// collapse into one flight, while a later generation starts its own.
	v, err, _ := c.group.Do(stale.Secret, func() (interface{}, error) {
		c.mu.Lock()
		if c.ended {
			c.mu.Unlock()
			return Credentials{}, ErrSessionEnded
		}
		if c.creds.Secret != stale.Secret {
			fresh := c.creds
			c.mu.Unlock()
			return fresh, nil
		}
		c.mu.Unlock()

		fresh, err := c.rotate(ctx, stale.SessionID, stale.Secret)
		if err != nil {
			c.end(err)
			return Credentials{}, fmt.Errorf("%w: %v", ErrSessionEnded, err)
		}

		c.mu.Lock()
		c.creds = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return Credentials{}, err
	}
	return v.(Credentials), nil
}

func (c *Coordinator) end(cause error) {
	c.mu.Lock()
	alreadyEnded := c.ended
	c.ended = true
	hook := c.onSessionEnd
	c.mu.Unlock()

	if !alreadyEnded && hook != nil {
		hook(cause)
	}
}

// Client is an http.Client wrapper that injects the coordinator's access
// token and retries a request exactly once after a 401 by refreshing first.
// Only requests with replayable bodies (GetBody set or no body) are retried.
type Client struct {
	HTTP        *http.Client
	Coordinator *Coordinator
}

// Do sends the request with the current access token, refreshing and
// retrying once on 401. A second 401 after a successful refresh is returned
// to the caller as-is; retrying further cannot help and risks hammering the
// rotation endpoint.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	creds, err := c.Coordinator.Current()
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	retry, err := replayableRequest(req)
	if err != nil {
		return resp, nil
	}

	fresh, err := c.Coordinator.Refresh(req.Context(), creds)
	if err != nil {
		return resp, nil
	}

	resp.Body.Close()

	retry.Header.Set("Authorization", "Bearer "+fresh.AccessToken)
	return httpClient.Do(retry)
}

func replayableRequest(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body not replayable")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	retry.Body = body
	return retry, nil
}
