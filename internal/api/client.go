package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/okatev/readspace/internal/session"
)

// Client talks to the remote platform API. All calls take a context;
// there is no retry logic and no default timeout — a hung request runs
// until its context is cancelled.
//
// The session holder is read for every authenticated call; only the
// login/logout operations write to it.
type Client struct {
	base       *url.URL
	http       *http.Client
	tokens     *session.Holder
	log        *zerolog.Logger
	instanceID string
}

// New creates a client for the API at baseURL. tokens may be nil for a
// client that only performs unauthenticated calls.
func New(baseURL string, tokens *session.Holder, logger *zerolog.Logger, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{
		base:       base,
		http:       &http.Client{Timeout: timeout},
		tokens:     tokens,
		log:        logger,
		instanceID: uuid.New().String(),
	}, nil
}

// errorBody is the error envelope the API uses; some endpoints say
// "message", others "error".
type errorBody struct {
	Message string `json:"message"`
	Err     string `json:"error"`
	Code    string `json:"code"`
}

// bearer resolves the token or fails before any network I/O.
func (c *Client) bearer() (string, error) {
	if c.tokens == nil {
		return "", ErrNotAuthenticated
	}
	tok, err := c.tokens.Token()
	if err != nil {
		if errors.Is(err, session.ErrNoToken) {
			return "", ErrNotAuthenticated
		}
		return "", err
	}
	return tok, nil
}

type requestOpts struct {
	authed bool
	query  url.Values
	body   any
	raw    io.Reader // overrides body; caller sets contentType
	contentType string
}

func (c *Client) do(ctx context.Context, method, path string, opts requestOpts, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if opts.query != nil {
		u.RawQuery = opts.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case opts.raw != nil:
		body = opts.raw
		contentType = opts.contentType
	case opts.body != nil:
		buf, err := json.Marshal(opts.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Client-Instance", c.instanceID)

	if opts.authed {
		tok, err := c.bearer()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("api request")

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	var eb errorBody
	if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
		apiErr.Code = eb.Code
		if eb.Message != "" {
			apiErr.Message = eb.Message
		} else {
			apiErr.Message = eb.Err
		}
	}
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, query url.Values, authed bool, out any) error {
	return c.do(ctx, http.MethodGet, path, requestOpts{authed: authed, query: query}, out)
}

func (c *Client) post(ctx context.Context, path string, body any, authed bool, out any) error {
	return c.do(ctx, http.MethodPost, path, requestOpts{authed: authed, body: body}, out)
}

func (c *Client) put(ctx context.Context, path string, body any, authed bool, out any) error {
	return c.do(ctx, http.MethodPut, path, requestOpts{authed: authed, body: body}, out)
}

func (c *Client) delete(ctx context.Context, path string, authed bool, out any) error {
	return c.do(ctx, http.MethodDelete, path, requestOpts{authed: authed}, out)
}
