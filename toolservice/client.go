// Package toolservice provides the HTTP client for the remote tool-execution
// gateway. The gateway advertises callable capabilities with GET /tools and
// executes them with POST /tools/call; the agent treats it as a black box.
package toolservice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/chatops/pkg/metricskey"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/chatops", "toolservice")

var (
	// ErrCatalogUnavailable is returned when the tool catalog cannot be fetched.
	ErrCatalogUnavailable = errors.New("tool catalog unavailable")
	// ErrToolCallFailed is returned when a tool invocation fails on the gateway.
	ErrToolCallFailed = errors.New("tool call failed")
)

// ToolDefinition is a tool descriptor advertised by the gateway.
// Immutable once fetched.
type ToolDefinition struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Parameters   *jsonschema.Schema `json:"parameters,omitempty"`
	OutputSchema json.RawMessage    `json:"output_schema,omitempty"`
	Annotations  map[string]any     `json:"annotations,omitempty"`
	Access       AccessScope        `json:"access"`
}

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an explicit handle to the tool-execution gateway. Construct it
// once and thread it into every catalog and invocation call sites; there is
// no package-level connection state.
type Client struct {
	baseURL    string
	token      string
	httpClient Doer
}

// Option is an option for the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client to use for requests.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.httpClient = d }
}

// WithToken sets the bearer token sent to the gateway.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient returns a new gateway client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("missing tool gateway base URL")
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListTools fetches the full tool descriptor list from the gateway.
func (c *Client) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tools", nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.WithMessage(err, "failed to fetch tool catalog"), ErrCatalogUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Mark(
			errors.Newf("failed to fetch tool catalog: unexpected status %d", resp.StatusCode),
			ErrCatalogUnavailable)
	}

	var list []ToolDefinition
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, errors.Mark(errors.WithMessage(err, "failed to decode tool catalog"), ErrCatalogUnavailable)
	}
	return list, nil
}

type callRequest struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// Call invokes the named tool on the gateway and returns the raw JSON result.
// The gateway responds with `{result: ...}` or the bare result object; the
// wrapper is unwrapped here.
func (c *Client) Call(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, name)

	bs, err := json.Marshal(callRequest{Tool: name, Arguments: args})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tools/call", bytes.NewReader(bs))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		return nil, errors.Mark(errors.WithMessagef(err, "failed to call tool %s", name), ErrToolCallFailed)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		return nil, errors.Mark(errors.WithMessagef(err, "failed to read tool %s response", name), ErrToolCallFailed)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_call_failed",
			"tool", name,
			"http_status", resp.StatusCode,
			"body", slices.StringUpto(string(body), 256),
		)
		return nil, errors.Mark(
			errors.Newf("failed to call tool %s: unexpected status %d", name, resp.StatusCode),
			ErrToolCallFailed)
	}
	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)

	if res := gjson.GetBytes(body, "result"); res.Exists() {
		return json.RawMessage(res.Raw), nil
	}
	return json.RawMessage(body), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
