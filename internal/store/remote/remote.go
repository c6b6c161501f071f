// Package remote is a store.Client that talks to a store host over HTTP and
// follows collections through its websocket snapshot stream.
package remote

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
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"coursekeeper/internal/store"
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

const (
	defaultTimeout     = 10 * time.Second
	defaultDialTimeout = 10 * time.Second
)

type Option func(*Client)

// WithHTTPClient replaces the client used for point calls.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

type Client struct {
	base   *url.URL
	http   *http.Client
	dialer *websocket.Dialer

	hub  *store.Hub
	keys *store.KeyGenerator
	log  *slog.Logger

	mu      sync.Mutex
	closed  bool
	streams map[store.Token]*websocket.Conn
}

var _ store.Client = (*Client)(nil)

func New(serverAddress string, log *slog.Logger, opts ...Option) (*Client, error) {
	if !strings.Contains(serverAddress, "://") {
		serverAddress = "http://" + serverAddress
	}
	base, err := url.Parse(strings.TrimRight(serverAddress, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server address: %w", err)
	}

	c := &Client{
		base:    base,
		http:    &http.Client{Timeout: defaultTimeout},
		dialer:  &websocket.Dialer{HandshakeTimeout: defaultDialTimeout},
		hub:     store.NewHub(),
		keys:    store.NewKeyGenerator(),
		log:     log.With("component", "remote_store", "server", base.Host),
		streams: make(map[store.Token]*websocket.Conn),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Subscribe(ctx context.Context, path string) (*store.Subscription, error) {
	if err := store.ValidatePath(path); err != nil {
		return nil, err
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, store.ErrClosed
	}

	ws, resp, err := c.dialer.DialContext(ctx, c.streamURL(path), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial stream %s: %w: %s", path, ErrUnexpectedStatus, resp.Status)
		}
		return nil, fmt.Errorf("dial stream %s: %w", path, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		ws.Close()
		return nil, store.ErrClosed
	}
	sub := c.hub.Add(path)
	c.streams[sub.Token()] = ws
	c.mu.Unlock()

	go c.pump(sub, ws)

	c.log.Debug("subscription added", "path", path, "token", sub.Token())
	return sub, nil
}

// pump moves frames of one stream into its subscription.
func (c *Client) pump(sub *store.Subscription, ws *websocket.Conn) {
	path, token := sub.Path(), sub.Token()

	for {
		var frame store.Frame
		if err := ws.ReadJSON(&frame); err != nil {
			if c.drop(token) {
				c.log.Warn("stream lost", "path", path, "error", err)
				c.hub.Terminate(path, token, fmt.Errorf("%w: %v", store.ErrCancelled, err))
			}
			return
		}

		switch frame.Type {
		case store.FrameSnapshot:
			if frame.Snapshot == nil {
				continue
			}
			c.hub.Deliver(sub, *frame.Snapshot)
		case store.FrameCancelled:
			if c.drop(token) {
				c.hub.Terminate(path, token, fmt.Errorf("%w: %s", store.ErrCancelled, frame.Error))
			}
			return
		default:
			c.log.Debug("unknown frame", "type", frame.Type)
		}
	}
}

// drop forgets the stream of token and closes it. It reports false when the
// stream was already dropped by Unsubscribe or Close.
func (c *Client) drop(token store.Token) bool {
	c.mu.Lock()
	ws, ok := c.streams[token]
	delete(c.streams, token)
	c.mu.Unlock()

	if ok {
		ws.Close()
	}
	return ok
}

func (c *Client) Unsubscribe(path string, token store.Token) error {
	removed := c.hub.Remove(path, token)
	c.drop(token)
	if removed {
		c.log.Debug("subscription removed", "path", path, "token", token)
	}
	return nil
}

func (c *Client) Write(ctx context.Context, path, key string, value any) error {
	if err := check(path, key); err != nil {
		return err
	}
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPut, c.childURL(path, key), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expect(resp, http.StatusOK)
}

func (c *Client) Remove(ctx context.Context, path, key string) error {
	if err := check(path, key); err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodDelete, c.childURL(path, key), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expect(resp, http.StatusOK)
}

func (c *Client) ReadOnce(ctx context.Context, path, key string) (store.Child, bool, error) {
	if err := check(path, key); err != nil {
		return store.Child{}, false, err
	}

	resp, err := c.do(ctx, http.MethodGet, c.childURL(path, key), nil)
	if err != nil {
		return store.Child{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return store.Child{}, false, nil
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return store.Child{}, false, err
	}

	var child store.Child
	if err := json.NewDecoder(resp.Body).Decode(&child); err != nil {
		return store.Child{}, false, fmt.Errorf("decode response: %w", err)
	}
	return child, true, nil
}

// GenerateKey makes the key locally. Keys are time ordered and unique across
// clients, so no round trip is needed.
func (c *Client) GenerateKey(path string) (string, error) {
	if err := store.ValidatePath(path); err != nil {
		return "", err
	}
	return c.keys.Next()
}

func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	streams := c.streams
	c.streams = make(map[store.Token]*websocket.Conn)
	c.mu.Unlock()

	c.hub.CancelAll(store.ErrClosed)
	for _, ws := range streams {
		ws.Close()
	}
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte) (*http.Response, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, store.ErrClosed
	}

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	return resp, nil
}

func (c *Client) childURL(path, key string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/db/" + url.PathEscape(path) + "/" + url.PathEscape(key)
	return u.String()
}

func (c *Client) streamURL(path string) string {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/db/" + url.PathEscape(path) + "/stream"
	return u.String()
}

func expect(resp *http.Response, status int) error {
	if resp.StatusCode == status {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(detail)))
}

func check(path, key string) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	return store.ValidateKey(key)
}
