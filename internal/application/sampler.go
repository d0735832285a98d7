package app

import "time"

// Sampler решает, отправлять ли захваченный кадр на сканирование.
// Кадр берётся, только если очередь не заполнена и с прошлой отправки прошёл интервал;
// иначе кадр пропускается, а не откладывается.
type Sampler struct {
	interval time.Duration
	last     time.Time
	primed   bool
}

// NewSampler создаёт сэмплер с минимальным интервалом между кадрами
func NewSampler(interval time.Duration) *Sampler {
	return &Sampler{interval: interval}
}

// Allow сообщает, можно ли отправить кадр сейчас
func (s *Sampler) Allow(now time.Time, queued, capacity int) bool {
	if queued >= capacity {
		return false
	}
	return !s.primed || now.Sub(s.last) >= s.interval
}

// Mark отмечает отправку кадра
func (s *Sampler) Mark(now time.Time) {
	s.last = now
	s.primed = true
}
