package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled(t *testing.T) {
	tests := []struct {
		v  string
		on bool
	}{
		{"", false},
		{"0", false},
		{"1", true},
		{"client", true},
		{"server", false},
		{"server,client", true},
		{"yes", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.on, enabled(tt.v), "%q", tt.v)
	}
}
