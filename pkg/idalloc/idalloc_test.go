package idalloc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		used []int
		want int
	}{
		{"empty", nil, 0},
		{"dense", []int{0, 1, 2}, 3},
		{"gap", []int{0, 2}, 1},
		{"missing zero", []int{1, 2, 3}, 0},
		{"unsorted", []int{3, 0, 1}, 2},
		{"duplicates", []int{0, 0, 1, 1}, 2},
		{"negative ignored", []int{-1, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.used))
		})
	}
}

func TestNext_Minimal(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		used := make([]int, r.Intn(30))
		set := make(map[int]bool)
		for j := range used {
			used[j] = r.Intn(40)
			set[used[j]] = true
		}

		got := Next(used)
		assert.False(t, set[got], "returned id %d is in use: %v", got, used)
		for k := 0; k < got; k++ {
			assert.True(t, set[k], "smaller free id %d exists for %v", k, used)
		}
	}
}
