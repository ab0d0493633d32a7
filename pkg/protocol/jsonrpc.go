// Package protocol defines the JSON-RPC 2.0 wire types exchanged with Neo
// nodes and the shape classification used to route inbound frames: frames
// carrying an id are responses to pending calls, frames carrying a method
// and a subscription id are push notifications.
package protocol

import (
	"encoding/json"
	"fmt"
)

const (
	// Version is the supported JSON-RPC version.
	Version = "2.0"

	// MethodSubscribe opens a standing server-side registration.
	MethodSubscribe = "neo_subscribe"

	// MethodUnsubscribe cancels a standing registration.
	MethodUnsubscribe = "neo_unsubscribe"

	// MethodSubscription is the notification method push events arrive under.
	MethodSubscription = "neo_subscription"
)

// Request is an outbound JSON-RPC 2.0 call. Immutable once dispatched.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// NewRequest builds a request, serializing the ordered parameter values.
// A nil params slice encodes as an empty array, which Neo nodes require.
func NewRequest(id uint64, method string, params []interface{}) (*Request, error) {
	if params == nil {
		params = []interface{}{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params for %s: %w", method, err)
	}
	return &Request{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
		Params:  raw,
	}, nil
}

// Error is the error member of a JSON-RPC response.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
}

// Response is an inbound reply to a call: id plus result xor error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Notification is an inbound frame with a method and no id.
type Notification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// SubscriptionParams is the params shape of a MethodSubscription notification.
type SubscriptionParams struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

// Message is a raw inbound frame before classification. ID is a pointer so
// that an absent id (notification) is distinguishable from id 0.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// ParseMessage decodes a raw frame. The caller classifies it afterwards;
// a decode failure here is a protocol violation, not a server error.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	return &msg, nil
}

// IsResponse reports whether the frame answers a pending call.
func (m *Message) IsResponse() bool {
	return m.ID != nil && (m.Result != nil || m.Error != nil)
}

// IsNotification reports whether the frame is an unsolicited push.
func (m *Message) IsNotification() bool {
	return m.ID == nil && m.Method != ""
}

// Response converts a classified response frame.
func (m *Message) Response() *Response {
	return &Response{JSONRPC: m.JSONRPC, ID: *m.ID, Result: m.Result, Error: m.Error}
}

// SubscriptionEvent extracts the subscription id and payload from a push
// notification frame. Returns false when the frame is not a subscription push.
func (m *Message) SubscriptionEvent() (string, json.RawMessage, bool) {
	if !m.IsNotification() || m.Method != MethodSubscription {
		return "", nil, false
	}
	var params SubscriptionParams
	if err := json.Unmarshal(m.Params, &params); err != nil || params.Subscription == "" {
		return "", nil, false
	}
	return params.Subscription, params.Result, true
}
