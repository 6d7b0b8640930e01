package ratelimit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nitesh/trendpulse-api/internal/ratelimit"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newLimiter(max int, window time.Duration) (*ratelimit.Limiter, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := ratelimit.New(max, window)
	l.SetClock(c.now)
	return l, c
}

func TestAllow_BurstThenReject(t *testing.T) {
	l, _ := newLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("10.0.0.1"), "request %d", i+1)
	}
	require.False(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.2"), "other clients have their own budget")
}

func TestAllow_OldestHitLeavesWindow(t *testing.T) {
	l, c := newLimiter(2, time.Minute)

	require.True(t, l.Allow("a"))
	c.t = c.t.Add(30 * time.Second)
	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))

	c.t = c.t.Add(29 * time.Second)
	require.False(t, l.Allow("a"), "first hit is still inside the window")

	c.t = c.t.Add(time.Second)
	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
}

func TestAllow_NeverExceedsMaxInAnyWindow(t *testing.T) {
	const max = 100
	window := 15 * time.Minute
	l, c := newLimiter(max, window)
	start := c.t

	// one request per second for two full windows
	var admitted []time.Time
	for s := 0; s < 1800; s++ {
		c.t = start.Add(time.Duration(s) * time.Second)
		if l.Allow("ip") {
			admitted = append(admitted, c.t)
		}
	}

	require.Len(t, admitted, 2*max)
	for i, from := range admitted {
		n := 0
		for _, at := range admitted[i:] {
			if at.Sub(from) < window {
				n++
			}
		}
		require.LessOrEqual(t, n, max, "window starting at %s", from)
	}

	// the first 899 seconds admit exactly max
	inFirst := 0
	for _, at := range admitted {
		if at.Sub(start) < window-time.Second {
			inFirst++
		}
	}
	require.Equal(t, max, inFirst)
}

func TestAllow_RejectedRequestsDoNotCount(t *testing.T) {
	l, c := newLimiter(1, time.Minute)

	require.True(t, l.Allow("a"))
	for i := 0; i < 10; i++ {
		c.t = c.t.Add(5 * time.Second)
		require.False(t, l.Allow("a"))
	}
	c.t = c.t.Add(10 * time.Second)
	require.True(t, l.Allow("a"))
}

func TestEvict(t *testing.T) {
	l, c := newLimiter(5, time.Minute)

	l.Allow("a")
	c.t = c.t.Add(45 * time.Second)
	l.Allow("b")
	require.Equal(t, 2, l.Len())

	c.t = c.t.Add(30 * time.Second)
	require.Equal(t, 1, l.Evict())
	require.Equal(t, 1, l.Len())
}

func TestStartClose(t *testing.T) {
	l := ratelimit.New(1, 10*time.Millisecond)
	l.Start()
	l.Allow("a")
	require.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)
	l.Close()
	l.Close()
}
