package transport

import (
	"bufio"
	"context"
	"net"
)

// ipcConn frames JSON-RPC over a local socket as newline-delimited messages,
// the framing Neo nodes use for their IPC endpoints.
type ipcConn struct {
	conn   net.Conn
	reader *bufio.Reader
}

func (c *ipcConn) ReadMessage() ([]byte, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (c *ipcConn) WriteMessage(data []byte) error {
	if _, err := c.conn.Write(data); err != nil {
		return err
	}
	_, err := c.conn.Write([]byte{'\n'})
	return err
}

func (c *ipcConn) Close() error {
	return c.conn.Close()
}

// dialIPC returns the dial function for a unix domain socket path.
func dialIPC(cfg Config) dialFunc {
	return func(ctx context.Context) (streamConn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "unix", cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		return &ipcConn{conn: conn, reader: bufio.NewReader(conn)}, nil
	}
}
