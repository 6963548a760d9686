package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHuman(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.50 KB"},
		{2 << 20, "2.00 MB"},
		{1 << 30, "1.00 GB"},
		{3 << 40, "3072.00 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Human(tt.n), "Human(%d)", tt.n)
	}
}

func TestHumanRate(t *testing.T) {
	assert.Equal(t, "512 B/s", HumanRate(1024, 2*time.Second))
	assert.Equal(t, "1.00 MB/s", HumanRate(1<<20, time.Second))
	assert.Equal(t, "-", HumanRate(100, 0))
}
