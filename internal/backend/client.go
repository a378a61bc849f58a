package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mmfoods/storefront/internal/apperror"
	"github.com/mmfoods/storefront/internal/config"
	"github.com/mmfoods/storefront/internal/middleware"
)

// Cookie is one upstream auth cookie. The upstream API authenticates with
// cookie-based tokens; the gateway captures them at login and replays them
// on behalf of the browser session.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Credentials is the per-session upstream cookie jar. It is stored (JSON)
// inside the gateway session record and attached to every authenticated
// upstream call. A nil/empty jar is valid -- public endpoints need none.
type Credentials []Cookie

// credentialsFrom captures the auth cookies set by an upstream response.
func credentialsFrom(resp *http.Response) Credentials {
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return nil
	}
	creds := make(Credentials, 0, len(cookies))
	for _, ck := range cookies {
		// Deleted cookies (MaxAge<0) are not worth carrying.
		if ck.MaxAge < 0 {
			continue
		}
		creds = append(creds, Cookie{Name: ck.Name, Value: ck.Value})
	}
	return creds
}

// Client is the upstream store API client. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend client from config. The base URL is normalized to
// have no trailing slash so paths can always start with "/".
func New(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// envelope is the upstream response wrapper: payloads arrive under "data",
// failures carry a human-readable "message".
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// newRequest builds an upstream request with the session's credential jar
// attached and the request ID (if any) propagated.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string, creds Credentials) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("building %s %s: %w", method, path, err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	for _, ck := range creds {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return req, nil
}

// send executes the request. Transport-level failures (DNS, refused
// connection, timeout) become NetworkError -- the caller never retries
// here, that is the user's decision.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.NewNetwork(fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	return resp, nil
}

// decode reads the response, normalizes non-2xx statuses into the error
// taxonomy, and unmarshals the "data" payload into out (which may be nil
// when the caller only cares about success).
func (c *Client) decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return apperror.NewNetwork(fmt.Errorf("reading upstream response: %w", err))
	}

	var env envelope
	// Tolerate non-JSON bodies (proxy error pages); the status code decides.
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if len(env.Data) == 0 {
			// Some endpoints return the payload bare, without the envelope.
			if err := json.Unmarshal(raw, out); err != nil {
				return apperror.NewInternal(fmt.Errorf("decoding upstream payload: %w", err))
			}
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperror.NewInternal(fmt.Errorf("decoding upstream payload: %w", err))
		}
		return nil
	}

	message := env.Message
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if message == "" {
			message = "invalid credentials or expired session"
		}
		return apperror.NewAuthError(message)
	case resp.StatusCode == http.StatusNotFound:
		if message == "" {
			message = "resource not found"
		}
		return apperror.NewNotFound(message)
	case resp.StatusCode >= 500:
		return apperror.NewNetwork(fmt.Errorf("upstream returned %d", resp.StatusCode))
	default:
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return apperror.NewBadRequest(message)
	}
}

// getJSON is the common GET-and-decode path.
func (c *Client) getJSON(ctx context.Context, path string, creds Credentials, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "", creds)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

// sendJSON marshals body and performs a mutating call with the given method.
func (c *Client) sendJSON(ctx context.Context, method, path string, creds Credentials, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("encoding request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, method, path, reader, "application/json", creds)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}
