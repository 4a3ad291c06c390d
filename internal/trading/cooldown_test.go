package trading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownNoPriorTrade(t *testing.T) {
	now := time.Now()
	st := cooldownStatus(nil, now, time.Minute)
	assert.False(t, st.Active)
	assert.Zero(t, st.WaitSeconds)
}

func TestCooldownExpired(t *testing.T) {
	now := time.Now()
	last := now.Add(-61 * time.Second)
	st := cooldownStatus(&last, now, time.Minute)
	assert.False(t, st.Active)
}

func TestCooldownExactBoundaryInactive(t *testing.T) {
	now := time.Now()
	last := now.Add(-time.Minute)
	st := cooldownStatus(&last, now, time.Minute)
	assert.False(t, st.Active)
}

func TestCooldownWaitRoundsUp(t *testing.T) {
	now := time.Now()

	last := now.Add(-59*time.Second - 500*time.Millisecond)
	st := cooldownStatus(&last, now, time.Minute)
	assert.True(t, st.Active)
	assert.EqualValues(t, 1, st.WaitSeconds, "a 500ms remainder still costs a full second")

	last = now.Add(-10 * time.Second)
	st = cooldownStatus(&last, now, time.Minute)
	assert.True(t, st.Active)
	assert.EqualValues(t, 50, st.WaitSeconds)
}
