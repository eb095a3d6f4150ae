package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLimiter(window time.Duration, max int) (*Limiter, *time.Time) {
	now := time.Date(2024, 7, 8, 10, 0, 0, 0, time.UTC)
	l := &Limiter{
		window:  window,
		max:     max,
		buckets: make(map[string]*bucket),
		now:     func() time.Time { return now },
	}
	return l, &now
}

func TestAllowWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		res := l.Allow("1.2.3.4")
		require.True(t, res.OK)
		require.Equal(t, 2-i, res.Remaining)
	}

	res := l.Allow("1.2.3.4")
	require.False(t, res.OK)
	require.Equal(t, 0, res.Remaining)
	require.Equal(t, time.Minute, res.RetryAfter)
}

func TestWindowReset(t *testing.T) {
	l, now := newTestLimiter(time.Minute, 1)

	require.True(t, l.Allow("1.2.3.4").OK)
	require.False(t, l.Allow("1.2.3.4").OK)

	*now = now.Add(time.Minute)
	require.True(t, l.Allow("1.2.3.4").OK)
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 1)

	require.True(t, l.Allow("1.2.3.4").OK)
	require.True(t, l.Allow("5.6.7.8").OK)
	require.False(t, l.Allow("1.2.3.4").OK)
}

func TestRetryAfterCountsDown(t *testing.T) {
	l, now := newTestLimiter(time.Minute, 1)

	require.True(t, l.Allow("1.2.3.4").OK)
	*now = now.Add(40 * time.Second)
	res := l.Allow("1.2.3.4")
	require.False(t, res.OK)
	require.Equal(t, 20*time.Second, res.RetryAfter)
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:52134"
	require.Equal(t, "10.0.0.1", ClientKey(r))

	r.Header.Set("X-Real-IP", "5.6.7.8")
	require.Equal(t, "5.6.7.8", ClientKey(r))

	r.Header.Set("X-Forwarded-For", "1.2.3.4, 9.9.9.9")
	require.Equal(t, "1.2.3.4", ClientKey(r))
}
