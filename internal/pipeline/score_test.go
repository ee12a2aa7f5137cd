package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampScore(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-5, 0},
		{0, 0},
		{49.4, 49},
		{72.5, 73},
		{100, 100},
		{150, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampScore(tt.in), "ClampScore(%v)", tt.in)
	}
}
