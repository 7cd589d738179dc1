package client

import (
	"context"

	"http1-client/application/http"
	"http1-client/application/http/transfer"
	"http1-client/transport"

	"github.com/pkg/errors"
)

var (
	ErrConnClosed = errors.New("connection is closed")
	ErrConnBusy   = errors.New("connection has a request in flight")
	ErrTimeout    = errors.New("request timed out")
	ErrCancelled  = errors.New("request cancelled")
)

// TransportError is a failure of the underlying stream.
// Op is one of "dial", "write" and "read".
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return "transport " + e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Cause() error  { return e.Err }

// protocolErrors are returned to the caller as they are.
var protocolErrors = []error{
	http.ErrMalformedStatusLine,
	http.ErrStatusLineTooLong,
	http.ErrMalformedHeaderLine,
	http.ErrFieldLineTooLong,
	http.ErrTooManyFields,
	http.ErrMissingCRBeforeLF,
	transfer.ErrInvalidContentLength,
	transfer.ErrMissingLengthInformation,
	transfer.ErrUnexpectedEOF,
	transfer.ErrMalformedChunkFraming,
	transfer.ErrBodyTooLarge,
}

// classify maps err from op into one of the errors of this package.
// Cancellation of ctx wins, since it surfaces as an I/O error of any kind.
func classify(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return errors.Wrap(ErrTimeout, err.Error())
		}
		return errors.Wrap(ErrCancelled, err.Error())
	}

	if errors.Is(err, transport.ErrDeadLineExceeded) {
		return errors.Wrap(ErrTimeout, err.Error())
	}

	for _, target := range protocolErrors {
		if errors.Is(err, target) {
			return err
		}
	}

	return &TransportError{Op: op, Err: err}
}
