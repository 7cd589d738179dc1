package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromCode(t *testing.T) {
	s, ok := FromCode(404)
	assert.True(t, ok)
	assert.Equal(t, NotFound, s)
	assert.Equal(t, "404 Not Found", s.String())

	s, ok = FromCode(299)
	assert.False(t, ok)
	assert.Equal(t, Status{Code: 299}, s)
}

func TestIsBodyless(t *testing.T) {
	testcases := []struct {
		code     uint
		expected bool
	}{
		{100, true},
		{101, true},
		{199, true},
		{200, false},
		{204, true},
		{205, false},
		{304, true},
		{404, false},
	}
	for _, tc := range testcases {
		assert.Equal(t, tc.expected, IsBodyless(tc.code), tc.code)
	}

	assert.True(t, IsInformational(103))
	assert.False(t, IsInformational(200))
}
