package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextUpdate(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name string
		prev time.Time
	}{
		{name: "past", prev: now.Add(-time.Hour)},
		{name: "same millisecond", prev: now.Truncate(time.Millisecond).Add(400 * time.Microsecond)},
		{name: "future clock skew", prev: now.Add(time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := nextUpdate(tt.prev)

			assert.True(t, next.After(tt.prev))
			assert.Equal(t, next, next.Truncate(time.Millisecond), "whole milliseconds")
			// Still ordered after a round trip through a datetime(3) column.
			assert.True(t, next.After(tt.prev.Truncate(time.Millisecond)))
		})
	}
}
