package transport

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsEndOfStream(t *testing.T) {
	testcases := []struct {
		desc     string
		err      error
		expected bool
	}{
		{desc: "conn closed", err: ErrConnClosed, expected: true},
		{desc: "wrapped conn closed", err: errors.Wrap(ErrConnClosed, "reading"), expected: true},
		{desc: "eof", err: io.EOF, expected: true},
		{desc: "unexpected eof", err: io.ErrUnexpectedEOF, expected: true},
		{desc: "deadline", err: ErrDeadLineExceeded, expected: false},
		{desc: "nil", err: nil, expected: false},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsEndOfStream(tc.err))
		})
	}
}
