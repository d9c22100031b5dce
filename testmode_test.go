package mazduino

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimulatedSourceIdleUntilRun(t *testing.T) {
	s := NewSimulatedSource().(*simSource)
	assert.Equal(t, "simulated", s.Name())
	assert.NoError(t, s.Request())
	assert.Equal(t, 0, s.step, "no channel registered yet")
}

func TestSimulatedSourceRun(t *testing.T) {
	s := NewSimulatedSource().(*simSource)
	out := make(chan Sample, channelBufferSize)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- s.Run(ctx, out)
	}()
	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.sendChan != nil
	}, time.Second, time.Millisecond)

	assert.NoError(t, s.Request())
	data := <-out
	assert.Equal(t, uint(50), data.Values.RPM)
	assert.True(t, data.Has(HasRPM|HasCoolantTemp|HasFlags))
	assert.True(t, data.Values.Flags.Sync)

	cancel()
	assert.Equal(t, context.Canceled, <-done)
}

func TestSimulatedSweep(t *testing.T) {
	s := NewSimulatedSource().(*simSource)

	peak := uint(0)
	for i := 0; i < 130; i++ {
		s.advance()
		if s.data.Values.RPM > peak {
			peak = s.data.Values.RPM
		}
	}
	assert.Equal(t, uint(6500), peak)
	assert.True(t, s.rpmDown)
	assert.True(t, s.data.Values.Flags.RevLimit)

	s.advance()
	assert.Equal(t, uint(6450), s.data.Values.RPM)
	assert.True(t, s.data.Values.Flags.DecelFuelCutoff)

	for i := 0; i < 129; i++ {
		s.advance()
	}
	assert.Equal(t, uint(0), s.data.Values.RPM)
	assert.False(t, s.rpmDown)
	assert.False(t, s.data.Values.Flags.Sync)
}

func TestSimulatedCoolantCycle(t *testing.T) {
	s := NewSimulatedSource().(*simSource)
	for i := 0; i < 49; i++ {
		s.advance()
	}
	assert.Equal(t, 20, s.data.Values.CoolantTemp)
	s.advance()
	assert.Equal(t, 21, s.data.Values.CoolantTemp)
	assert.Equal(t, 27, s.data.Values.IntakeAirTemp)
}
