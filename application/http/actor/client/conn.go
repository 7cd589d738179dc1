package client

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"http1-client/application/http"
	"http1-client/application/http/semantic"
	"http1-client/application/http/semantic/status"
	"http1-client/application/http/transfer"
	iolib "http1-client/lib/io"
	"http1-client/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

type State uint8

const (
	// StateOpen is a fresh connection which hasn't sent anything yet.
	StateOpen State = iota
	// StateActive has an exchange in progress.
	StateActive
	// StateIdle is safe to send the next request on.
	StateIdle
	// StateClosed owns no transport anymore.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateActive:
		return "active"
	case StateIdle:
		return "idle"
	case StateClosed:
		return "closed"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Conn is a client side HTTP/1.1 connection. It owns con exclusively.
// One request is in flight at a time; there is no pipelining.
type Conn struct {
	con transport.Conn
	dec *http.ResponseDecoder
	dl  *deadlines

	logger *slog.Logger
	clock  clock.Clock
	opts   Options

	state State
	mu    sync.Mutex // guards the fields above
}

// NewConn takes the ownership of con. A nil logger discards logs and a nil clock is the real one.
func NewConn(con transport.Conn, logger *slog.Logger, clk clock.Clock, opts Options) *Conn {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clk == nil {
		clk = clock.New()
	}

	r := iolib.NewUntilReader(&connClosedReader{r: con})

	return &Conn{
		con:    con,
		dec:    http.NewResponseDecoder(r, opts.Receive.Decode),
		dl:     &deadlines{con: con, clock: clk},
		logger: logger.With(slog.String("remote", con.RemoteAddr().String())),
		clock:  clk,
		opts:   opts,
		state:  StateOpen,
	}
}

// Dial connects to addr with d and wraps the stream into a [Conn].
func Dial(
	ctx context.Context,
	d transport.ConnDialer,
	addr transport.Addr,
	logger *slog.Logger,
	clk clock.Clock,
	opts Options,
) (*Conn, error) {
	con, err := d.Dial(ctx, addr)
	if err != nil {
		return nil, classify(ctx, "dial", err)
	}

	return NewConn(con, logger, clk, opts), nil
}

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send writes request and reads the complete response.
//
// Any error other than an invalid request or a cancellation before sending
// leaves the connection closed, since the stream can't be trusted to be
// aligned on a message boundary anymore.
func (c *Conn) Send(ctx context.Context, request *semantic.Request) (*semantic.Response, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}

	// Nothing is written when the request can't be serialized.
	raw, err := http.MarshalRequest(request.RawRequest(), c.opts.Send.Encode)
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}

	if err := c.activate(ctx); err != nil {
		return nil, err
	}

	response, keepAlive, err := c.roundtrip(ctx, request, raw)
	if err != nil {
		if transport.IsEndOfStream(err) {
			c.logger.Debug("peer closed connection", slog.String("error", err.Error()))
		} else {
			c.logger.Warn("closing connection on error", slog.String("error", err.Error()))
		}
		c.shutdown()
		return nil, err
	}

	if !keepAlive {
		c.logger.Debug("connection not reusable")
		c.shutdown()
		return response, nil
	}

	c.dl.reset()

	c.mu.Lock()
	if c.state == StateActive {
		c.state = StateIdle
	}
	c.mu.Unlock()

	return response, nil
}

func (c *Conn) activate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return ErrConnClosed
	case StateActive:
		return ErrConnBusy
	}

	if err := ctx.Err(); err != nil {
		return classify(ctx, "write", err)
	}

	c.state = StateActive
	return nil
}

func (c *Conn) roundtrip(
	ctx context.Context, request *semantic.Request, raw []byte,
) (_ *semantic.Response, keepAlive bool, _ error) {
	c.dl.set(c.opts.Timeout.ReadTimeout, c.opts.Timeout.WriteTimeout)

	stop := c.dl.watch(ctx)
	defer stop()

	c.logger.Debug("sending request",
		slog.String("method", request.Method.String()),
		slog.String("target", request.Target()),
	)

	if _, err := iolib.WriteFull(c.con, raw); err != nil {
		return nil, false, classify(ctx, "write", errors.Wrap(err, "writing request"))
	}

	head, err := c.readHead()
	if err != nil {
		return nil, false, classify(ctx, "read", err)
	}

	framing, err := transfer.Select(request.Method, head.StatusCode, head.Headers)
	if err != nil {
		return nil, false, classify(ctx, "read", err)
	}

	c.logger.Debug("response received",
		slog.Uint64("status", uint64(head.StatusCode)),
		slog.String("framing", framing.Kind.String()),
	)

	if framing.Kind == transfer.KindCloseDelimited {
		if c.opts.Receive.RejectCloseDelimited {
			return nil, false, transfer.ErrMissingLengthInformation
		}
		c.logger.Debug("no length information, reading until close")
	}

	body, err := transfer.ReadBody(&c.dec.MessageDecoder, framing, c.opts.Receive.Read)
	if err != nil {
		return nil, false, classify(ctx, "read", err)
	}

	head.Body = body.Data
	response := semantic.ResponseFrom(head, body.Trailers)

	if !c.opts.Receive.UseReceivedReasonPhrase {
		// Overwrite the reason phrase with default one.
		if st, ok := status.FromCode(response.Status.Code); ok {
			response.Status = st
		}
	}

	return response, isReusable(request, head, framing), nil
}

// readHead reads the status line and headers of the final response.
// Interim responses are skipped, except 101 which is final on this connection.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.2
func (c *Conn) readHead() (*http.Response, error) {
	for {
		var head http.Response
		if err := c.dec.Decode(&head); err != nil {
			return nil, errors.Wrap(err, "decoding response")
		}

		if status.IsInformational(head.StatusCode) && head.StatusCode != status.SwitchingProtocols.Code {
			c.logger.Debug("skipping interim response", slog.Uint64("status", uint64(head.StatusCode)))
			continue
		}

		return &head, nil
	}
}

// isReusable decides whether another request may follow on the connection.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-9.3
func isReusable(request *semantic.Request, head *http.Response, f transfer.Framing) bool {
	switch {
	case f.Kind == transfer.KindCloseDelimited:
		return false
	case head.StatusCode == status.SwitchingProtocols.Code:
		// The stream no longer speaks HTTP/1.1.
		return false
	case hasConnectionOption(request.Headers, "close"),
		hasConnectionOption(head.Headers, "close"):
		return false
	case head.Version.Before(http.Version11):
		return hasConnectionOption(head.Headers, "keep-alive")
	}
	return true
}

func hasConnectionOption(h http.Headers, option string) bool {
	return httpguts.HeaderValuesContainsToken(h.Values("Connection"), option)
}

// Close releases the transport. It is safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosed

	if err := c.con.Close(); err != nil {
		return errors.Wrap(err, "closing transport")
	}
	return nil
}

func (c *Conn) shutdown() {
	if err := c.Close(); err != nil {
		c.logger.Warn("failed to close transport", slog.String("error", err.Error()))
	}
}

// connClosedReader overwrites [transport.ErrConnClosed] as [io.EOF].
type connClosedReader struct{ r io.Reader }

func (r *connClosedReader) Read(p []byte) (n int, err error) {
	n, err = r.r.Read(p)
	if errors.Is(err, transport.ErrConnClosed) {
		return n, io.EOF
	}
	return n, err
}
