package app

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

var grid8 = entity.PlateType{
	Name:  "Grid8",
	Rings: []entity.SlotRing{{Count: 8, Radius: 0.6, SlotRadius: 0.15}},
}

// fakeAligner всегда находит n областей, кроме кадров из fail
type fakeAligner struct {
	mu    sync.Mutex
	n     int
	fail  map[uint64]error
	calls int
}

func newFakeAligner(n int) *fakeAligner {
	return &fakeAligner{n: n, fail: map[uint64]error{}}
}

func (a *fakeAligner) Align(ctx context.Context, frame *entity.Frame) (*entity.Alignment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls++
	if err, ok := a.fail[frame.Seq]; ok {
		return nil, err
	}
	regions := make([]entity.Region, a.n)
	for i := range regions {
		regions[i] = entity.Region{Center: entity.Point{X: float64(10 + i*20), Y: 10}, Radius: 8}
	}
	return &entity.Alignment{Center: entity.Point{X: 80, Y: 10}, Radius: 80, Regions: regions}, nil
}

// fakeDecoder отдаёт результаты по номеру кадра и слота, иначе из fallback
type fakeDecoder struct {
	mu       sync.Mutex
	byFrame  map[uint64]map[int]entity.DecodeResult
	fallback map[int]entity.DecodeResult
	calls    map[int]int
	delay    time.Duration
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{
		byFrame:  map[uint64]map[int]entity.DecodeResult{},
		fallback: map[int]entity.DecodeResult{},
		calls:    map[int]int{},
	}
}

func (d *fakeDecoder) on(seq uint64, slot int, res entity.DecodeResult) *fakeDecoder {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.byFrame[seq] == nil {
		d.byFrame[seq] = map[int]entity.DecodeResult{}
	}
	d.byFrame[seq][slot] = res
	return d
}

func (d *fakeDecoder) always(slot int, res entity.DecodeResult) *fakeDecoder {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback[slot] = res
	return d
}

func (d *fakeDecoder) Decode(ctx context.Context, frame *entity.Frame, slot int, region entity.Region) entity.DecodeResult {
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls[slot]++
	if res, ok := d.byFrame[frame.Seq][slot]; ok {
		return res
	}
	if res, ok := d.fallback[slot]; ok {
		return res
	}
	return entity.NoResult()
}

func (d *fakeDecoder) callsFor(slot int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[slot]
}

func testFrame(seq uint64) *entity.Frame {
	return &entity.Frame{Seq: seq, Timestamp: time.Now(), Image: image.NewGray(image.Rect(0, 0, 160, 20))}
}

// fakeClock ручные часы
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeSource выдаёт кадры с заданным интервалом или ошибку чтения
type fakeSource struct {
	mu      sync.Mutex
	seq     uint64
	every   time.Duration
	readErr error
	closed  bool
}

func (s *fakeSource) Read(ctx context.Context) (*entity.Frame, error) {
	if s.every > 0 {
		time.Sleep(s.every)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	s.seq++
	return testFrame(s.seq), nil
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// fakeOpener открывает источник только для устройств из ok
type fakeOpener struct {
	mu     sync.Mutex
	ok     map[int]bool
	source *fakeSource
	tried  []int
}

func (o *fakeOpener) Open(device int) (port.FrameSource, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tried = append(o.tried, device)
	if !o.ok[device] {
		return nil, errors.New("no such device")
	}
	return o.source, nil
}

func (o *fakeOpener) triedDevices() []int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int(nil), o.tried...)
}

// fakeDisplay считает показы и нажимает q после quitAfter кадров
type fakeDisplay struct {
	mu        sync.Mutex
	quitAfter int
	shown     int
	texts     []string
	closed    bool
}

func (d *fakeDisplay) Show(frame *entity.Frame, overlay entity.Overlay) port.Key {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown++
	if overlay.Text != "" && (len(d.texts) == 0 || d.texts[len(d.texts)-1] != overlay.Text) {
		d.texts = append(d.texts, overlay.Text)
	}
	if d.quitAfter > 0 && d.shown >= d.quitAfter {
		return port.KeyQuit
	}
	return port.KeyNone
}

func (d *fakeDisplay) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *fakeDisplay) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type fakeTone struct {
	mu    sync.Mutex
	tones []int
}

func (f *fakeTone) Beep(hz int, duration time.Duration) error {
	f.mu.Lock()
	f.tones = append(f.tones, hz)
	f.mu.Unlock()
	return nil
}

func (f *fakeTone) played() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.tones...)
}
