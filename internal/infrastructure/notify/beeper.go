package notify

import (
	"time"

	"github.com/gen2brain/beeep"

	"puck-scanner/internal/domain/port"
)

// Beeper издаёт системный звуковой сигнал
type Beeper struct {
	beep func(freq float64, durationMs int) error
}

// NewBeeper создаёт сигнал через системный динамик
func NewBeeper() *Beeper {
	return &Beeper{beep: beeep.Beep}
}

func (b *Beeper) Beep(hz int, duration time.Duration) error {
	return b.beep(float64(hz), int(duration/time.Millisecond))
}

var _ port.ToneEmitter = (*Beeper)(nil)
