package ziptree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/ziptree/pkg/ziptree"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name string
		a, b ziptree.Distance
		want ziptree.Distance
	}{
		{"finite", 3, 4, 7},
		{"zero", 0, 0, 0},
		{"unreachable left", ziptree.Unreachable, 1, ziptree.Unreachable},
		{"unreachable right", 1, ziptree.Unreachable, ziptree.Unreachable},
		{"overflow saturates", ziptree.Unreachable - 1, 5, ziptree.Unreachable},
		{"reaches sentinel", ziptree.Unreachable - 1, 1, ziptree.Unreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ziptree.Sum(tt.a, tt.b))
		})
	}
}

func TestMinus(t *testing.T) {
	assert.Equal(t, ziptree.Distance(3), ziptree.Minus(7, 4))
	assert.Equal(t, ziptree.Distance(0), ziptree.Minus(4, 7))
	assert.Equal(t, ziptree.Unreachable, ziptree.Minus(ziptree.Unreachable, 4))
	assert.Equal(t, ziptree.Unreachable, ziptree.Minus(4, ziptree.Unreachable))
}

func TestDistanceString(t *testing.T) {
	assert.Equal(t, "42", ziptree.Distance(42).String())
	assert.Equal(t, "inf", ziptree.Unreachable.String())
	assert.True(t, ziptree.Distance(0).Reachable())
	assert.False(t, ziptree.Unreachable.Reachable())
}
