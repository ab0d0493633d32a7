package transport

import (
	stderrors "errors"
	"io"
	"net"
	"syscall"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/gorilla/websocket"
)

// wrapNetError maps an OS or library level network failure onto the client
// error taxonomy, preserving the cause. Classification here is what the
// Retry layer keys on, so each code must match the actual failure mode.
func wrapNetError(err error, op string) error {
	if err == nil {
		return nil
	}

	code := errors.CodeTransportError
	switch {
	case stderrors.Is(err, syscall.ECONNREFUSED):
		code = errors.CodeConnectionRefused
	case stderrors.Is(err, syscall.ECONNRESET), stderrors.Is(err, syscall.EPIPE):
		code = errors.CodeConnectionReset
	case stderrors.Is(err, io.EOF), stderrors.Is(err, io.ErrUnexpectedEOF), stderrors.Is(err, net.ErrClosed):
		code = errors.CodeConnectionLost
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		code = errors.CodeConnectionLost
	default:
		var netErr net.Error
		if stderrors.As(err, &netErr) && netErr.Timeout() {
			code = errors.CodeConnectionTimeout
		}
	}

	return errors.Wrap(err, code, op+" failed")
}
