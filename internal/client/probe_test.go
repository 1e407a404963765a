package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, QualityGood, Classify(50*time.Millisecond))
	assert.Equal(t, QualityGood, Classify(149*time.Millisecond))
	assert.Equal(t, QualityFair, Classify(150*time.Millisecond))
	assert.Equal(t, QualityFair, Classify(499*time.Millisecond))
	assert.Equal(t, QualityPoor, Classify(500*time.Millisecond))
	assert.Equal(t, QualityPoor, Classify(3*time.Second))
}

func TestProbe(t *testing.T) {
	t.Run("round trip sets quality", func(t *testing.T) {
		probe := NewProbe(5 * time.Second)
		clk := &clock{now: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)}
		probe.now = clk.Now

		token := probe.Ping()
		clk.Advance(200 * time.Millisecond)

		quality, ok := probe.Pong(token)
		assert.True(t, ok)
		assert.Equal(t, QualityFair, quality)
		assert.Equal(t, QualityFair, probe.Quality())
		assert.Equal(t, 200*time.Millisecond, probe.RTT())
	})

	t.Run("unknown token ignored", func(t *testing.T) {
		probe := NewProbe(5 * time.Second)

		_, ok := probe.Pong(12345)
		assert.False(t, ok)
		assert.Equal(t, QualityGood, probe.Quality())
	})

	t.Run("unanswered ping degrades to poor", func(t *testing.T) {
		probe := NewProbe(5 * time.Second)
		clk := &clock{now: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)}
		probe.now = clk.Now

		probe.Ping()
		assert.Equal(t, QualityGood, probe.Quality())

		clk.Advance(6 * time.Second)
		assert.Equal(t, QualityPoor, probe.Quality())
	})

	t.Run("lost ping is superseded by a later round trip", func(t *testing.T) {
		probe := NewProbe(5 * time.Second)
		clk := &clock{now: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)}
		probe.now = clk.Now

		probe.Ping()
		clk.Advance(30 * time.Second)

		token := probe.Ping()
		clk.Advance(20 * time.Millisecond)

		quality, ok := probe.Pong(token)
		assert.True(t, ok)
		assert.Equal(t, QualityGood, quality)
		assert.Equal(t, QualityGood, probe.Quality())
	})

	t.Run("recovers after a timed-out ping", func(t *testing.T) {
		probe := NewProbe(5 * time.Second)
		clk := &clock{now: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)}
		probe.now = clk.Now

		probe.Ping()
		clk.Advance(6 * time.Second)
		assert.Equal(t, QualityPoor, probe.Quality())

		token := probe.Ping()
		clk.Advance(50 * time.Millisecond)

		_, ok := probe.Pong(token)
		assert.True(t, ok)
		assert.Equal(t, QualityGood, probe.Quality())
	})
}
