// Package netconn adapts [net.Conn] (plain TCP or TLS) to [transport.Conn].
package netconn

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"os"
	"time"

	"http1-client/transport"

	"github.com/pkg/errors"
)

type Addr struct {
	Network string
	Address string
}

var _ transport.Addr = Addr{}

func (a Addr) Protocol() transport.Protocol {
	switch a.Network {
	case "tcp", "tcp4", "tcp6":
		return transport.TCP
	}
	return transport.Protocol(a.Network)
}

func (a Addr) String() string { return a.Address }

func addrOf(a net.Addr) Addr {
	if a == nil {
		return Addr{}
	}
	return Addr{Network: a.Network(), Address: a.String()}
}

type conn struct{ nc net.Conn }

var _ transport.Conn = (*conn)(nil)

// Wrap adapts nc. End of stream and use of a closed conn become [transport.ErrConnClosed],
// an expired deadline becomes [transport.ErrDeadLineExceeded].
func Wrap(nc net.Conn) transport.Conn { return &conn{nc: nc} }

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.nc.Read(p)
	return n, convertErr(err)
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.nc.Write(p)
	return n, convertErr(err)
}

func (c *conn) Close() error { return c.nc.Close() }

func (c *conn) LocalAddr() transport.Addr  { return addrOf(c.nc.LocalAddr()) }
func (c *conn) RemoteAddr() transport.Addr { return addrOf(c.nc.RemoteAddr()) }

// net.Conn only fails SetDeadline on a closed conn, and the next Read/Write reports that anyway.
func (c *conn) SetReadDeadLine(t time.Time)  { _ = c.nc.SetReadDeadline(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { _ = c.nc.SetWriteDeadline(t) }

func convertErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed):
		return errors.Wrap(transport.ErrConnClosed, err.Error())
	case errors.Is(err, os.ErrDeadlineExceeded):
		return transport.ErrDeadLineExceeded
	}
	return err
}

// Dialer opens TCP connections, wrapped in TLS when TLSConfig is set.
type Dialer struct {
	TLSConfig *tls.Config
	Timeout   time.Duration
}

var _ transport.ConnDialer = (*Dialer)(nil)

func (d *Dialer) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	network := "tcp"
	if a, ok := addr.(Addr); ok && a.Network != "" {
		network = a.Network
	}

	nd := &net.Dialer{Timeout: d.Timeout}

	if d.TLSConfig == nil {
		nc, err := nd.DialContext(ctx, network, addr.String())
		if err != nil {
			return nil, errors.Wrapf(err, "dialing %s", addr)
		}
		return Wrap(nc), nil
	}

	td := &tls.Dialer{NetDialer: nd, Config: d.TLSConfig}
	nc, err := td.DialContext(ctx, network, addr.String())
	if err != nil {
		return nil, errors.Wrapf(err, "dialing tls %s", addr)
	}

	return Wrap(nc), nil
}
