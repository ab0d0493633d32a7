package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestEncodesEmptyParamsAsArray(t *testing.T) {
	req, err := NewRequest(1, "getblockcount", nil)
	require.NoError(t, err)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"getblockcount","params":[]}`, string(data))
}

func TestNewRequestPreservesParamOrder(t *testing.T) {
	req, err := NewRequest(7, "getblock", []interface{}{"0xabc", 1})
	require.NoError(t, err)
	assert.Equal(t, `["0xabc",1]`, string(req.Params))
}

func TestParseMessageClassifiesResponse(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"jsonrpc":"2.0","id":3,"result":{"count":42}}`))
	require.NoError(t, err)

	assert.True(t, msg.IsResponse())
	assert.False(t, msg.IsNotification())

	resp := msg.Response()
	assert.Equal(t, uint64(3), resp.ID)
	assert.JSONEq(t, `{"count":42}`, string(resp.Result))
	assert.Nil(t, resp.Error)
}

func TestParseMessageClassifiesErrorResponse(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"jsonrpc":"2.0","id":9,"error":{"code":-32601,"message":"Method not found"}}`))
	require.NoError(t, err)

	require.True(t, msg.IsResponse())
	resp := msg.Response()
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
	assert.Equal(t, "json-rpc error -32601: Method not found", resp.Error.Error())
}

func TestParseMessageClassifiesSubscriptionPush(t *testing.T) {
	raw := `{"jsonrpc":"2.0","method":"neo_subscription","params":{"subscription":"0xdead","result":{"index":100}}}`
	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)

	assert.True(t, msg.IsNotification())
	assert.False(t, msg.IsResponse())

	subID, payload, ok := msg.SubscriptionEvent()
	require.True(t, ok)
	assert.Equal(t, "0xdead", subID)
	assert.JSONEq(t, `{"index":100}`, string(payload))
}

func TestSubscriptionEventRejectsOtherNotifications(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"jsonrpc":"2.0","method":"other_notification","params":{}}`))
	require.NoError(t, err)

	_, _, ok := msg.SubscriptionEvent()
	assert.False(t, ok)
}

func TestSubscriptionEventRejectsMissingID(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"jsonrpc":"2.0","method":"neo_subscription","params":{"result":1}}`))
	require.NoError(t, err)

	_, _, ok := msg.SubscriptionEvent()
	assert.False(t, ok)
}

func TestParseMessageRejectsMalformedFrame(t *testing.T) {
	_, err := ParseMessage([]byte(`{"jsonrpc":`))
	assert.Error(t, err)
}

func TestIDZeroIsStillAResponse(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"jsonrpc":"2.0","id":0,"result":true}`))
	require.NoError(t, err)
	assert.True(t, msg.IsResponse())
	assert.Equal(t, uint64(0), msg.Response().ID)
}
