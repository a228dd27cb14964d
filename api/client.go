// ABOUTME: HTTP client for the Zala REST API
// ABOUTME: Handles JSON envelopes, body-level errors, request ids and tagged cancellation
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
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// GenericErrorMessage is used when a failed response carries no message.
	GenericErrorMessage = "Error communicating with API"

	// InvalidJSONMessage describes a failed response whose body is not JSON.
	InvalidJSONMessage = "Invalid JSON response from API"
)

// ErrNoData is returned by operations that need a body when the backend
// answered with an empty or null one.
var ErrNoData = errors.New("no data returned")

// ErrNoCampaign guards mutating calls against the sentinel campaign.
var ErrNoCampaign = errors.New("no campaign loaded")

var okStatuses = map[int]bool{
	http.StatusOK:        true,
	http.StatusCreated:   true,
	http.StatusAccepted:  true,
	http.StatusNoContent: true,
}

// Error is an HTTP or application-level failure reported by the backend.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Tag names an operation that can be aborted through an armed signal.
type Tag string

const (
	TagNone           Tag = ""
	TagSearchLeads    Tag = "searchLeads"
	TagUpdateCampaign Tag = "updateCampaign"
	TagUpdateLead     Tag = "updateLead"
	TagGetLeads       Tag = "getLeads"
)

type Client struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	deviceID string

	mu         sync.Mutex
	signal     context.Context
	signalTags map[Tag]bool
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDeviceID sets the value sent in the X-Client-Device header.
func WithDeviceID(id string) Option {
	return func(c *Client) { c.deviceID = id }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetSignal arms signal for the given operation tags. While armed, any
// operation carrying one of those tags is aborted when signal is done.
// Arming replaces whatever was armed before.
func (c *Client) SetSignal(signal context.Context, tags ...Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signal = signal
	c.signalTags = make(map[Tag]bool, len(tags))
	for _, t := range tags {
		c.signalTags[t] = true
	}
}

// ClearSignal disarms the current signal.
func (c *Client) ClearSignal() {
	c.SetSignal(nil)
}

// withSignal derives a context that is also cancelled by the armed signal
// when tag is armed.
func (c *Client) withSignal(ctx context.Context, tag Tag) (context.Context, context.CancelFunc) {
	c.mu.Lock()
	sig := c.signal
	armed := tag != TagNone && c.signalTags[tag]
	c.mu.Unlock()

	if !armed || sig == nil {
		return ctx, func() {}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	if sig.Err() != nil {
		cancel(context.Cause(sig))
		return ctx, func() {}
	}
	stop := context.AfterFunc(sig, func() {
		cancel(context.Cause(sig))
	})
	return ctx, func() {
		stop()
		cancel(nil)
	}
}

// Fetch performs one request and returns the raw JSON body, or nil when the
// backend answered successfully with an empty, null or non-JSON body. A
// status outside 200/201/202/204 or a body carrying "err" or "error" is an
// *Error.
func (c *Client) Fetch(ctx context.Context, tag Tag, method, path string, query url.Values, body any) (json.RawMessage, error) {
	ctx, cancel := c.withSignal(ctx, tag)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil && (method == http.MethodPost || method == http.MethodPut) {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.deviceID != "" {
		req.Header.Set("X-Client-Device", c.deviceID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	c.logger.Debug("request complete",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return c.interpret(method, path, resp.StatusCode, raw)
}

func (c *Client) interpret(method, path string, status int, raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	ok := okStatuses[status]

	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if ok {
			return nil, nil
		}
		return nil, &Error{Method: method, Path: path, Status: status, Message: GenericErrorMessage}
	}

	if !json.Valid(trimmed) {
		if ok {
			c.logger.Warn("non-JSON success body treated as empty",
				zap.String("method", method),
				zap.String("path", path))
			return nil, nil
		}
		return nil, &Error{Method: method, Path: path, Status: status, Message: InvalidJSONMessage}
	}

	if msg, failed := bodyError(trimmed, ok); failed || !ok {
		if msg == "" {
			msg = GenericErrorMessage
		}
		return nil, &Error{Method: method, Path: path, Status: status, Message: msg}
	}

	return json.RawMessage(trimmed), nil
}

// bodyError extracts err, error or (for failed statuses) detail from an
// object body. failed reports whether err or error was present and non-null.
func bodyError(raw []byte, statusOK bool) (msg string, failed bool) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", false
	}

	for _, key := range []string{"err", "error"} {
		v, present := envelope[key]
		if !present || string(v) == "null" {
			continue
		}
		return messageFrom(v), true
	}

	if !statusOK {
		if v, present := envelope["detail"]; present {
			return messageFrom(v), false
		}
	}
	return "", false
}

// messageFrom renders a string, a FastAPI validation list, or any other
// JSON value as a human message.
func messageFrom(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(v, &list); err == nil && len(list) > 0 && list[0].Msg != "" {
		return list[0].Msg
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(v, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	return string(v)
}

// call fetches and decodes a wire object, returning ErrNoData on an empty body.
func call[W any](ctx context.Context, c *Client, tag Tag, method, path string, query url.Values, body any) (*W, error) {
	raw, err := c.Fetch(ctx, tag, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrNoData)
	}

	var w W
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return &w, nil
}

func decodeList[W any](raw json.RawMessage, what string) ([]W, error) {
	var ws []W
	if err := json.Unmarshal(raw, &ws); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", what, err)
	}
	return ws, nil
}

// exec performs a request whose body, if any, is ignored.
func (c *Client) exec(ctx context.Context, method, path string, body any) error {
	_, err := c.Fetch(ctx, TagNone, method, path, nil, body)
	return err
}

// IsCanceled reports whether err came from an aborted request.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
