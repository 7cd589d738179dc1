package iolib

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUntil(t *testing.T) {
	sample := []byte("Hello, World!")

	testcases := []struct {
		desc     string
		delim    []byte
		expected []byte
		wantErr  error
	}{
		{
			desc:     "sample",
			delim:    []byte("Wo"),
			expected: []byte("Hello, Wo"),
		},
		{
			desc:     "not found",
			delim:    []byte("Bye!"),
			expected: []byte("Hello, World!"),
			wantErr:  io.EOF,
		},
		{
			desc:     "no delim",
			delim:    []byte(nil),
			expected: nil,
			wantErr:  ErrZeroLenDelim,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			r := NewUntilReader(bytes.NewReader(sample))
			b, err := r.ReadUntil(tc.delim)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tc.expected, b)
		})
	}
}

func TestReadUntilSplitDelim(t *testing.T) {
	// One byte per read, so CRLF always arrives in two reads.
	r := NewUntilReader(iotest.OneByteReader(bytes.NewReader([]byte("ab\r\ncd\r\n"))))

	b, err := r.ReadUntil([]byte("\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ab\r\n"), b)

	b, err = r.ReadUntil([]byte("\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte("cd\r\n"), b)
}

func TestReadAfterReadUntil(t *testing.T) {
	sample := []byte("Hello, World!")
	r := NewUntilReader(bytes.NewReader(sample))

	b, err := r.ReadUntil([]byte("el"))
	require.NoError(t, err)
	require.Equal(t, []byte("Hel"), b)
	assert.Equal(t, len(sample)-len(b), r.Buffered())

	buf := make([]byte, 10)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, []byte("lo, World!"), buf)
}

func TestReadUntilAfterReadUntil(t *testing.T) {
	sample := []byte("Hello, World!")
	r := NewUntilReader(bytes.NewReader(sample))

	b, err := r.ReadUntil([]byte("el"))
	require.NoError(t, err)
	require.Equal(t, []byte("Hel"), b)

	b, err = r.ReadUntil([]byte("Wo"))
	require.NoError(t, err)
	assert.Equal(t, []byte("lo, Wo"), b)
}

func TestReadUntilLimit(t *testing.T) {
	sample := []byte("Hello, World!")

	r := NewUntilReader(bytes.NewReader(sample))
	_, err := r.ReadUntilLimit([]byte("World!"), 3)
	require.ErrorIs(t, err, ErrLimitExceeded)

	r = NewUntilReader(bytes.NewReader(sample))
	b, err := r.ReadUntilLimit([]byte("World!"), uint(len(sample)))
	require.NoError(t, err)
	assert.Equal(t, sample, b)
}

func TestReadUntilLimitZero(t *testing.T) {
	sample := []byte("Hello, World!")
	r := NewUntilReader(bytes.NewReader(sample))

	b, err := r.ReadUntilLimit([]byte("World!"), 0)
	require.NoError(t, err)
	assert.Equal(t, sample, b)
}

func TestReadLine(t *testing.T) {
	r := NewUntilReader(bytes.NewReader([]byte("first\r\nsecond\n\r\nrest")))

	line, crlf, err := r.ReadLine(0)
	require.NoError(t, err)
	assert.True(t, crlf)
	assert.Equal(t, []byte("first"), line)

	line, crlf, err = r.ReadLine(0)
	require.NoError(t, err)
	assert.False(t, crlf)
	assert.Equal(t, []byte("second"), line)

	line, crlf, err = r.ReadLine(0)
	require.NoError(t, err)
	assert.True(t, crlf)
	assert.Empty(t, line)

	line, _, err = r.ReadLine(0)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []byte("rest"), line)
}

func TestReadFull(t *testing.T) {
	r := NewUntilReader(bytes.NewReader([]byte("line\nHello")))
	_, _, err := r.ReadLine(0)
	require.NoError(t, err)

	b, err := r.ReadFull(5)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), b)

	r = NewUntilReader(bytes.NewReader([]byte("Hel")))
	b, err = r.ReadFull(5)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, []byte("Hel"), b)

	r = NewUntilReader(bytes.NewReader(nil))
	b, err = r.ReadFull(0)
	assert.NoError(t, err)
	assert.Empty(t, b)
}
