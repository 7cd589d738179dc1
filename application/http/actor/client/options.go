package client

import (
	"time"

	"http1-client/application/http"
	"http1-client/application/http/transfer"
)

type Options struct {
	Send    SendOptions
	Receive ReceiveOptions
	Timeout TimeoutOptions
}

type SendOptions struct {
	Encode http.EncodeOptions
}

type ReceiveOptions struct {
	Decode http.DecodeOptions
	Read   transfer.ReadOptions

	// RejectCloseDelimited fails responses that carry a body without
	// Content-Length or chunked Transfer-Encoding.
	// If false, such a body is read until the server closes the connection.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.8
	RejectCloseDelimited bool

	// UseReceivedReasonPhrase uses reason phrase from response.
	// If false, the reason phrase will instead be filled with default value for the status code.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-4-9
	UseReceivedReasonPhrase bool
}

type TimeoutOptions struct {
	// WriteTimeout bounds writing the request. Zero means no timeout.
	WriteTimeout time.Duration
	// ReadTimeout bounds the whole exchange, from the first request byte
	// to the last response byte. Zero means no timeout.
	ReadTimeout time.Duration
}

var DefaultOptions = Options{
	Send: SendOptions{
		Encode: http.DefaultEncodeOptions,
	},
	Receive: ReceiveOptions{
		Decode:                  http.DefaultDecodeOptions,
		Read:                    transfer.DefaultReadOptions,
		RejectCloseDelimited:    false,
		UseReceivedReasonPhrase: true,
	},
	Timeout: TimeoutOptions{
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  60 * time.Second,
	},
}
