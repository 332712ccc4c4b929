// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// Package eclair is a read-only client for the Eclair node HTTP API.
// Every call is a form-encoded POST authenticated with HTTP basic auth.
package eclair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/tortoise-ln/tortoise/internal/logging"
)

// DefaultTimeout bounds each request when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a reply is read. Audit replies of busy routing
// nodes are large but stay well below this.
const maxBody = 64 << 20

// auditWindow is how far back Audit is asked for by the monitor.
const auditWindow = 30 * 24 * time.Hour

type Options struct {
	URL      string
	User     string
	Password string
	Timeout  time.Duration
	// DumpDir, when set and debug logging is on, receives a gzip copy of
	// every raw reply.
	DumpDir string
	// HTTPClient replaces the default transport, mostly for tests.
	HTTPClient *http.Client
}

// Client queries one Eclair node. It is safe for concurrent use.
type Client struct {
	base     string
	user     string
	password string
	timeout  time.Duration
	dumpDir  string
	http     *http.Client
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		base:     strings.TrimRight(opts.URL, "/"),
		user:     opts.User,
		password: opts.Password,
		timeout:  timeout,
		dumpDir:  opts.DumpDir,
		http:     hc,
	}
}

// URL returns the node endpoint the client talks to.
func (c *Client) URL() string { return c.base }

func (c *Client) post(ctx context.Context, method string, form url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if len(form) > 0 {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+method, body)
	if err != nil {
		return nil, &APIError{Sentinel: ErrUpstreamUnavailable, Method: method, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.SetBasicAuth(c.user, c.password)

	logging.Debugf("eclair: requesting %s", method)
	res, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Sentinel: transportSentinel(err), Method: method, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, &APIError{Sentinel: transportSentinel(err), Method: method, Status: res.StatusCode, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{
			Sentinel: statusSentinel(res.StatusCode),
			Method:   method,
			Status:   res.StatusCode,
			Body:     truncateBody(data),
		}
	}
	logging.Debugf("eclair: %s replied with %d bytes", method, len(data))
	c.dump(method, data)
	return data, nil
}

func transportSentinel(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return ErrUpstreamUnavailable
}

// call posts method and decodes the reply into T.
func call[T any](ctx context.Context, c *Client, method string, form url.Values) (T, error) {
	var out T
	data, err := c.post(ctx, method, form)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &APIError{Sentinel: ErrBadResponse, Method: method, Body: truncateBody(data), Err: err}
	}
	return out, nil
}

func (c *Client) dump(method string, data []byte) {
	if c.dumpDir == "" || !logging.DebugEnabled() {
		return
	}
	name := strings.ReplaceAll(method, "-", "_") + "_response.json.gz"
	path := filepath.Join(c.dumpDir, name)
	if err := writeGzip(path, data); err != nil {
		logging.Warnf("eclair: dump %s: %v", path, err)
		return
	}
	logging.Debugf("eclair: response written to %s", path)
}

func writeGzip(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// GetInfo returns the node identity and chain state.
func (c *Client) GetInfo(ctx context.Context) (NodeInfo, error) {
	return call[NodeInfo](ctx, c, "getinfo", nil)
}

// Channels lists every channel the node knows about.
func (c *Client) Channels(ctx context.Context) ([]Channel, error) {
	return call[[]Channel](ctx, c, "channels", nil)
}

// Audit returns sent, received and relayed payments between from and to.
func (c *Client) Audit(ctx context.Context, from, to time.Time) (Audit, error) {
	if to.Before(from) {
		return Audit{}, fmt.Errorf("audit: window ends (%s) before it starts (%s)", to, from)
	}
	form := url.Values{}
	form.Set("from", strconv.FormatInt(from.Unix(), 10))
	form.Set("to", strconv.FormatInt(to.Unix(), 10))
	logging.Debugf("eclair: audit window %d..%d", from.Unix(), to.Unix())
	return call[Audit](ctx, c, "audit", form)
}

// AuditLastMonth is Audit over the 30 days that end at now.
func (c *Client) AuditLastMonth(ctx context.Context, now time.Time) (Audit, error) {
	return c.Audit(ctx, now.Add(-auditWindow), now)
}

// Nodes returns the gossip announcements of the given node ids. It makes no
// request for an empty list.
func (c *Client) Nodes(ctx context.Context, ids []string) ([]NetworkNode, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	form := url.Values{}
	form.Set("nodeIds", strings.Join(ids, ","))
	return call[[]NetworkNode](ctx, c, "nodes", form)
}

// OnchainBalance returns the wallet balance in satoshi.
func (c *Client) OnchainBalance(ctx context.Context) (Balance, error) {
	return call[Balance](ctx, c, "onchainbalance", nil)
}

// HostedChannels lists channels of the hosted-channels plugin.
func (c *Client) HostedChannels(ctx context.Context) (PluginChannels, error) {
	return call[PluginChannels](ctx, c, PluginHostedChannels.method(), nil)
}

// FiatChannels lists channels of the fiat-channels plugin.
func (c *Client) FiatChannels(ctx context.Context) (PluginChannels, error) {
	return call[PluginChannels](ctx, c, PluginFiatChannels.method(), nil)
}
