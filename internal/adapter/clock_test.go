package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	at := time.Date(2024, 3, 14, 13, 30, 0, 0, nairobi)

	c := FixedClock(at)

	assert.Equal(t, time.UTC, c.Now().Location())
	assert.True(t, c.Now().Equal(at))
	assert.Equal(t, time.Hour, c.Since(at.Add(-time.Hour)))
}

func TestNewClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, time.UTC, c.Now().Location())
	assert.GreaterOrEqual(t, c.Since(time.Now().Add(-time.Minute)), time.Minute)
}
