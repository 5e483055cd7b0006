package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/ctxutil"
	"github.com/example/shopfloor/internal/ports/secondary"
	"github.com/example/shopfloor/internal/version"
)

// Client is the REST order gateway. Calls are single attempts: a failed
// request is reported to the caller and never retried.
type Client struct {
	baseURL    string
	token      string
	operatorID string
	timeout    time.Duration
	http       *http.Client
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the bearer token forwarded on every request.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithOperatorID sets the operator sent when the context names none.
func WithOperatorID(id string) ClientOption {
	return func(c *Client) { c.operatorID = id }
}

// WithHTTPClient replaces the underlying HTTP client. The client is used as
// given; WithTimeout does not apply to it. A nil client keeps the default.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// DefaultTimeout bounds a request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// StartWorkOrder starts a work order and returns its parent.
func (c *Client) StartWorkOrder(ctx context.Context, workOrderID string, opts secondary.StartOptions) (*secondary.ManufacturingOrderRecord, error) {
	var resp workOrderActionResponse
	body := startBody{OperatorID: opts.OperatorID, Notes: opts.Notes}
	if err := c.doAction(ctx, workOrderPath(workOrderID, "start"), body, &resp); err != nil {
		return nil, err
	}
	return optionalRecord(resp.Order), nil
}

// PauseWorkOrder pauses a work order and returns its parent.
func (c *Client) PauseWorkOrder(ctx context.Context, workOrderID string, opts secondary.NoteOptions) (*secondary.ManufacturingOrderRecord, error) {
	var resp workOrderActionResponse
	if err := c.doAction(ctx, workOrderPath(workOrderID, "pause"), notesBody(opts), &resp); err != nil {
		return nil, err
	}
	return optionalRecord(resp.Order), nil
}

// ResumeWorkOrder resumes a work order and returns its parent.
func (c *Client) ResumeWorkOrder(ctx context.Context, workOrderID string, opts secondary.NoteOptions) (*secondary.ManufacturingOrderRecord, error) {
	var resp workOrderActionResponse
	if err := c.doAction(ctx, workOrderPath(workOrderID, "resume"), notesBody(opts), &resp); err != nil {
		return nil, err
	}
	return optionalRecord(resp.Order), nil
}

// CompleteWorkOrder completes a work order and returns its parent.
func (c *Client) CompleteWorkOrder(ctx context.Context, workOrderID string, opts secondary.CompleteOptions) (*secondary.ManufacturingOrderRecord, error) {
	var resp workOrderActionResponse
	body := completeWorkOrderBody{Notes: opts.Notes, ActualDuration: opts.ActualDurationMinutes}
	if err := c.doAction(ctx, workOrderPath(workOrderID, "complete"), body, &resp); err != nil {
		return nil, err
	}
	return optionalRecord(resp.Order), nil
}

// GetManufacturingOrder fetches an order with its work orders.
func (c *Client) GetManufacturingOrder(ctx context.Context, orderID string) (*secondary.ManufacturingOrderRecord, error) {
	var resp orderJSON
	if err := c.do(ctx, http.MethodGet, orderPath(orderID, ""), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toRecord(), nil
}

// GetWorkOrder fetches a single work order.
func (c *Client) GetWorkOrder(ctx context.Context, workOrderID string) (*secondary.WorkOrderRecord, error) {
	var resp workOrderJSON
	if err := c.do(ctx, http.MethodGet, workOrderPath(workOrderID, ""), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toRecord(), nil
}

// CompleteManufacturingOrder completes an order. The inventory effects are
// reported back as the service computed them.
func (c *Client) CompleteManufacturingOrder(ctx context.Context, orderID string, opts secondary.NoteOptions) (*secondary.CompletionReceipt, error) {
	var resp completeOrderResponse
	if err := c.doAction(ctx, orderPath(orderID, "complete"), notesBody(opts), &resp); err != nil {
		return nil, err
	}

	receipt := &secondary.CompletionReceipt{
		Message:          resp.Message,
		ProducedQuantity: resp.ProducedQuantity,
		Order:            optionalRecord(resp.Order),
	}
	for _, cc := range resp.ConsumedComponents {
		receipt.ConsumedComponents = append(receipt.ConsumedComponents, secondary.ConsumedComponentRecord(cc))
	}
	return receipt, nil
}

// Helper methods

func orderPath(id, action string) string {
	return resourcePath("manufacturing-orders", id, action)
}

func workOrderPath(id, action string) string {
	return resourcePath("work-orders", id, action)
}

func resourcePath(collection, id, action string) string {
	p := "/api/" + collection + "/" + url.PathEscape(id) + "/"
	if action != "" {
		p += action + "/"
	}
	return p
}

// do sends one request and decodes a 2xx JSON response into out. Error
// responses are mapped back to their apperr kind.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.send(ctx, method, path, body, out, apperr.KindValidation)
}

// doAction posts a state transition. A 400 carrying only an error message is
// a guard rejection from services that do not send a code, and is reported as
// an invalid transition.
func (c *Client) doAction(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPost, path, body, out, apperr.KindInvalidTransition)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any, rejected apperr.Kind) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	operator := ctxutil.ActorFromContext(ctx)
	if operator == "" {
		operator = c.operatorID
	}
	if operator != "" {
		req.Header.Set(HeaderOperatorID, operator)
	}
	if id := ctxutil.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(HeaderRequestID, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Service(fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	c.logger.Debug("order service call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, rejected)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Service(fmt.Sprintf("malformed response from %s %s", method, path), err)
	}
	return nil
}

// decodeError maps an error response to its kind. rejected is the kind of a
// code-less 400 that carries an error message.
func decodeError(resp *http.Response, rejected apperr.Kind) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Error != "" {
		kind := apperr.Kind(e.Code)
		switch {
		case kind != "":
		case resp.StatusCode == http.StatusBadRequest:
			kind = rejected
		default:
			kind = kindFor(resp.StatusCode)
		}
		return apperr.FromKind(kind, e.Error)
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = resp.Status
	}
	return apperr.FromKind(kindFor(resp.StatusCode), msg)
}

// Ensure Client implements the interface
var _ secondary.OrderGateway = (*Client)(nil)
