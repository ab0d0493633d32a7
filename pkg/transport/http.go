package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/logging"
	"github.com/RustForNeo/neoclient/pkg/protocol"
)

// httpTransport is the stateless request/response transport: one POST per
// call, no push channel, no reconnect logic beyond the pooled sockets the
// standard client keeps.
type httpTransport struct {
	cfg    Config
	client *http.Client
	nextID atomic.Uint64
	closed atomic.Bool
	lg     logging.Logger
}

var _ Transport = (*httpTransport)(nil)

func newHTTPTransport(cfg Config) (*httpTransport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxIdleConnsPerHost = 10
	if cfg.TLSInsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in, test environments
	}

	lg := cfg.Logger
	if lg == nil {
		lg = logging.NewNop()
	}

	return &httpTransport{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		lg: lg.With("transport", string(KindHTTP)),
	}, nil
}

func (t *httpTransport) Kind() Kind     { return KindHTTP }
func (t *httpTransport) NextID() uint64 { return t.nextID.Add(1) }

func (t *httpTransport) Call(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	if t.closed.Load() {
		return nil, errors.New(errors.CodeConnectionClosed, "transport is closed")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeProtocolError, "encode request %s", req.Method)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTransportError, "build http request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrapf(ctx.Err(), errors.CodeRequestTimeout, "no response to %s before deadline", req.Method)
		}
		return nil, wrapNetError(err, "post "+t.cfg.Endpoint)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.CodeTransportError, "unexpected http status %d", httpResp.StatusCode)
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, wrapNetError(err, "read response body")
	}

	msg, err := protocol.ParseMessage(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeProtocolViolation, "decode response")
	}
	if !msg.IsResponse() {
		return nil, errors.New(errors.CodeProtocolViolation, "frame is not a response")
	}

	resp := msg.Response()
	if resp.ID != req.ID {
		// HTTP pairs one response to one request; a foreign id is a
		// server defect, not a routing problem.
		return nil, errors.Newf(errors.CodeProtocolViolation, "response id %d does not match request id %d", resp.ID, req.ID)
	}
	return resp, nil
}

func (t *httpTransport) Close() error {
	if t.closed.CompareAndSwap(false, true) {
		t.client.CloseIdleConnections()
	}
	return nil
}
