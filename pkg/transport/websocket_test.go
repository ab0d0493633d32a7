package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RustForNeo/neoclient/pkg/protocol"
)

// wsTestServer is a minimal JSON-RPC node: answers every request with
// {"echo": <method>} and pushes one subscription event per "neo_subscribe".
func wsTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req protocol.Request
			if err := json.Unmarshal(data, &req); err != nil {
				continue
			}

			if req.Method == protocol.MethodSubscribe {
				resp, _ := json.Marshal(&protocol.Response{
					JSONRPC: protocol.Version, ID: req.ID, Result: json.RawMessage(`"srv-sub-1"`),
				})
				if err := conn.WriteMessage(websocket.TextMessage, resp); err != nil {
					return
				}
				params, _ := json.Marshal(protocol.SubscriptionParams{
					Subscription: "srv-sub-1", Result: json.RawMessage(`{"index":100}`),
				})
				push, _ := json.Marshal(&protocol.Notification{
					JSONRPC: protocol.Version, Method: protocol.MethodSubscription, Params: params,
				})
				if err := conn.WriteMessage(websocket.TextMessage, push); err != nil {
					return
				}
				continue
			}

			result, _ := json.Marshal(map[string]string{"echo": req.Method})
			resp, _ := json.Marshal(&protocol.Response{JSONRPC: protocol.Version, ID: req.ID, Result: result})
			if err := conn.WriteMessage(websocket.TextMessage, resp); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsEndpoint(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketTransportRoundTrip(t *testing.T) {
	srv := wsTestServer(t)

	cfg := DefaultConfig(KindWebSocket, wsEndpoint(srv))
	cfg.RequestTimeout = 2 * time.Second
	cfg.Reconnect.Enabled = false
	tr, err := New(cfg)
	require.NoError(t, err)
	defer tr.Close()

	ws, ok := tr.(Streaming)
	require.True(t, ok, "websocket transport must be streaming")
	require.NoError(t, ws.Connect(context.Background()))
	assert.Equal(t, KindWebSocket, tr.Kind())

	resp, err := tr.Call(context.Background(), newReq(tr.NextID(), "getversion"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"echo":"getversion"}`, string(resp.Result))
}

func TestWebSocketTransportSubscriptionPush(t *testing.T) {
	srv := wsTestServer(t)

	cfg := DefaultConfig(KindWebSocket, wsEndpoint(srv))
	cfg.RequestTimeout = 2 * time.Second
	cfg.Reconnect.Enabled = false
	tr, err := New(cfg)
	require.NoError(t, err)
	defer tr.Close()

	ws := tr.(Streaming)
	mgr := NewSubscriptionManager(nil)
	ws.SetNotificationSink(mgr)
	require.NoError(t, ws.Connect(context.Background()))

	resp, err := tr.Call(context.Background(),
		newReq(tr.NextID(), protocol.MethodSubscribe, "block_added"))
	require.NoError(t, err)

	var subID string
	require.NoError(t, json.Unmarshal(resp.Result, &subID))
	sub := mgr.Track(subID, "block_added")

	select {
	case ev := <-sub.Events():
		assert.JSONEq(t, `{"index":100}`, string(ev))
	case <-time.After(2 * time.Second):
		t.Fatal("no subscription event arrived")
	}
}

func TestWebSocketTransportDialFailure(t *testing.T) {
	cfg := DefaultConfig(KindWebSocket, "ws://127.0.0.1:1")
	cfg.DialTimeout = 200 * time.Millisecond
	cfg.Reconnect.Enabled = false
	tr, err := New(cfg)
	require.NoError(t, err)
	defer tr.Close()

	ws := tr.(Streaming)
	err = ws.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateDisconnected, ws.State())
}
