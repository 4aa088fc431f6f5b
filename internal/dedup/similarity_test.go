package dedup

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"国庆", "出行"}, []string{"出行", "国庆"}, 1},
		{"disjoint", []string{"国庆"}, []string{"高考"}, 0},
		{"empty", nil, []string{"国庆"}, 0},
		{"partial", []string{"a", "b"}, []string{"a", "b", "c"}, 2 / math.Sqrt(6)},
		{"multiset", []string{"a", "a"}, []string{"a", "b"}, 2 / (2 * math.Sqrt(2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, Similarity(tt.b, tt.a), 1e-9)
		})
	}
}
