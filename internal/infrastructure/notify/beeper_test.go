package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBeeper_PassesFrequencyAndMillis(t *testing.T) {
	var gotFreq float64
	var gotMs int
	b := &Beeper{beep: func(freq float64, ms int) error {
		gotFreq, gotMs = freq, ms
		return nil
	}}

	require.NoError(t, b.Beep(5037, 200*time.Millisecond))
	require.Equal(t, 5037.0, gotFreq)
	require.Equal(t, 200, gotMs)
}

func TestBeeper_ReturnsError(t *testing.T) {
	b := &Beeper{beep: func(float64, int) error { return errors.New("no speaker") }}
	require.Error(t, b.Beep(37, time.Millisecond))
}
