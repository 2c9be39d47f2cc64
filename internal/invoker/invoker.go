package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	connect "connectrpc.com/connect"

	"github.com/ratd/webaction-gateway/internal/api"
	"github.com/ratd/webaction-gateway/internal/domain"
	"github.com/ratd/webaction-gateway/internal/gateway"
)

// jsonCodec marshals the plain Go structs this package exchanges with the
// invoker as JSON. The invoker speaks ConnectRPC's unary-over-HTTP/2
// protocol, but there is no generated protobuf schema to invoke against,
// so requests and responses are ordinary structs carried over connect's
// pluggable Codec instead of proto messages.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// invokeRequest is the wire request sent to the invoker's /invoke RPC.
type invokeRequest struct {
	Namespace    string          `json:"namespace"`
	Package      string          `json:"package"`
	Action       string          `json:"action"`
	Payload      json.RawMessage `json:"payload"`
	WaitMillis   int64           `json:"wait_millis"`
	OwnerSubject string          `json:"owner_subject"`
}

// invokeResponse is the wire response from the invoker's /invoke RPC.
type invokeResponse struct {
	ActivationID string                  `json:"activation_id"`
	TimedOut     bool                    `json:"timed_out"`
	Result       json.RawMessage         `json:"result"`
	Status       domain.ActivationStatus `json:"status"`
}

// Client calls the external invoker over ConnectRPC's unary protocol and
// implements internal/gateway.Invoker. One Client is safe for concurrent
// use by multiple Handlers.
type Client struct {
	client  *connect.Client[invokeRequest, invokeResponse]
	timeout time.Duration
}

// New builds a Client bound to baseURL (scheme://host:port, no
// path) using httpClient for transport — ordinarily the output of
// invoker.NewClient (h2c or TLS). requestTimeout bounds the entire RPC,
// separate from the gateway's own maxBlockingWait parameter carried in
// the request body.
func New(httpClient *http.Client, baseURL string, requestTimeout time.Duration) *Client {
	return &Client{
		client: connect.NewClient[invokeRequest, invokeResponse](
			httpClient,
			baseURL+"/invoker.v1.InvokerService/Invoke",
			connect.WithCodec(jsonCodec{}),
		),
		timeout: requestTimeout,
	}
}

var _ gateway.Invoker = (*Client)(nil)

// Invoke implements internal/gateway.Invoker. waitOverride is the
// caller's blocking-wait budget in milliseconds; the RPC itself is
// additionally bounded by the Client's own requestTimeout so a stalled
// invoker can never hang the calling goroutine past that ceiling.
func (c *Client) Invoke(ctx context.Context, owner domain.Identity, action domain.Action, payload []byte, waitOverride int64) (gateway.InvokeResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := connect.NewRequest(&invokeRequest{
		Namespace:    action.Namespace,
		Package:      action.Package,
		Action:       action.Name,
		Payload:      json.RawMessage(payload),
		WaitMillis:   waitOverride,
		OwnerSubject: owner.Subject,
	})
	propagateRequestID(ctx, req)

	resp, err := c.client.CallUnary(ctx, req)
	if err != nil {
		return gateway.InvokeResult{}, fmt.Errorf("invoke %s/%s/%s: %w", action.Namespace, action.Package, action.Name, err)
	}

	msg := resp.Msg
	if msg.TimedOut {
		return gateway.InvokeResult{ActivationID: msg.ActivationID, TimedOut: true}, nil
	}
	return gateway.InvokeResult{
		ActivationID: msg.ActivationID,
		Activation: &domain.Activation{
			ID:     msg.ActivationID,
			Result: msg.Result,
			Status: msg.Status,
		},
	}, nil
}

// propagateRequestID forwards the caller's transaction id to the invoker
// so its own logs can be correlated back to this gateway request.
func propagateRequestID(ctx context.Context, req *connect.Request[invokeRequest]) {
	id := api.RequestIDFromContext(ctx)
	if id == "" {
		return
	}
	req.Header().Set("X-Request-ID", id)
}
