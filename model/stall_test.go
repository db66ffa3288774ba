package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStallDetector(t *testing.T) {
	s := &StallDetector{Patience: 3}
	assert.False(t, s.Observe(10))
	assert.False(t, s.Observe(10))
	assert.False(t, s.Observe(10))
	assert.True(t, s.Observe(10))
	assert.Equal(t, 3, s.Since())

	assert.False(t, s.Observe(9), "an improvement resets the count")
	assert.Equal(t, 0, s.Since())
	assert.False(t, s.Observe(9.5))
}

func TestStallDetectorWithoutPatience(t *testing.T) {
	s := &StallDetector{}
	for i := 0; i < 100; i++ {
		assert.False(t, s.Observe(1))
	}
}
