package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(clock *fakeClock, opts ...Option) *Breaker {
	base := []Option{WithFailureThreshold(2), WithCooldown(time.Minute), WithClock(clock.now)}
	return New("smtp", append(base, opts...)...)
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newTestBreaker(clock)

	assert.True(t, b.Allow())
	assert.False(t, b.RecordFailure().Opened)
	assert.Equal(t, StateClosed, b.State())

	change := b.RecordFailure()
	assert.True(t, change.Opened)
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newTestBreaker(clock)

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerProbeAfterCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newTestBreaker(clock)
	b.RecordFailure()
	b.RecordFailure()

	clock.advance(59 * time.Second)
	assert.False(t, b.Allow())

	clock.advance(time.Second)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	assert.False(t, b.Allow(), "only one probe at a time")

	change := b.RecordSuccess()
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newTestBreaker(clock)
	b.RecordFailure()
	b.RecordFailure()

	clock.advance(time.Minute)
	assert.True(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow(), "cooldown restarts from the failed probe")

	clock.advance(time.Minute)
	assert.True(t, b.Allow())
}

func TestBreakerSuccessThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newTestBreaker(clock, WithSuccessThreshold(2))
	b.RecordFailure()
	b.RecordFailure()

	clock.advance(time.Minute)
	assert.True(t, b.Allow())
	assert.False(t, b.RecordSuccess().Closed)
	assert.Equal(t, StateOpen, b.State())

	clock.advance(time.Minute)
	assert.True(t, b.Allow())
	assert.True(t, b.RecordSuccess().Closed)
}

func TestBreakerReset(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newTestBreaker(clock)
	b.RecordFailure()
	b.RecordFailure()
	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
	assert.Equal(t, "smtp", b.Name())
}
