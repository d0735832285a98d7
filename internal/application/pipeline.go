package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

const (
	frameQueueLimit = 1 // не больше одного необработанного кадра
	scannedTag      = "Scan Complete"
	beepDuration    = 200 * time.Millisecond
)

// ErrDeviceUnavailable камера не открылась или перестала отдавать кадры
var ErrDeviceUnavailable = errors.New("capture device unavailable")

// queueItem элемент очереди кадров: кадр или сигнал остановки
type queueItem interface{ queueItem() }

type frameItem struct{ frame *entity.Frame }

type stopItem struct{}

func (frameItem) queueItem() {}
func (stopItem) queueItem()  {}

// PipelineOptions параметры конвейера
type PipelineOptions struct {
	SampleInterval  time.Duration // минимальный интервал между кадрами на сканирование
	CameraNumber    int
	CameraFallback  int
	MaxReadFailures int  // подряд неудачных чтений до остановки захвата
	ConsoleFrame    bool // печатать сводку по каждому кадру
	Beep            bool
	Now             func() time.Time
}

// PipelineStats счётчики конвейера
type PipelineStats struct {
	Captured uint64 // кадров прочитано с камеры
	Enqueued uint64 // кадров отправлено на сканирование
	Shed     uint64 // кадров пропущено
	Scanned  uint64 // кадров обработано
	Results  uint64 // планшетов отправлено в очередь результатов
}

// Pipeline два параллельных потока: захват кадров и сканирование.
// Потоки общаются только через очереди; снимок планшета живёт в потоке сканирования.
type Pipeline struct {
	opts    PipelineOptions
	opener  port.FrameSourceOpener
	display port.Display
	session *ScanSession
	tone    port.ToneEmitter
	summary io.Writer
	logger  *slog.Logger

	frames   chan queueItem
	overlays *Queue[entity.Overlay]
	results  *Queue[entity.PlateResult]
	resets   chan struct{}
	kill     chan struct{}
	killOnce sync.Once
	scanDone chan struct{}

	status atomic.Pointer[entity.SessionStatus]

	captured atomic.Uint64
	enqueued atomic.Uint64
	shed     atomic.Uint64
	scanned  atomic.Uint64
	emitted  atomic.Uint64
}

// NewPipeline создаёт конвейер. tone и summary могут быть nil.
func NewPipeline(opts PipelineOptions, opener port.FrameSourceOpener, display port.Display, session *ScanSession, tone port.ToneEmitter, summary io.Writer, logger *slog.Logger) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxReadFailures <= 0 {
		opts.MaxReadFailures = 30
	}

	p := &Pipeline{
		opts:     opts,
		opener:   opener,
		display:  display,
		session:  session,
		tone:     tone,
		summary:  summary,
		logger:   logger,
		frames:   make(chan queueItem, frameQueueLimit),
		overlays: NewQueue[entity.Overlay](),
		results:  NewQueue[entity.PlateResult](),
		resets:   make(chan struct{}, 1),
		kill:     make(chan struct{}),
		scanDone: make(chan struct{}),
	}
	st := session.Status()
	p.status.Store(&st)
	return p
}

// Results возвращает очередь разрешённых планшетов. Закрывается при остановке сканирования.
func (p *Pipeline) Results() *Queue[entity.PlateResult] {
	return p.results
}

// Run запускает оба потока и ждёт их завершения.
// Возвращает ошибку потока захвата, если камера недоступна.
func (p *Pipeline) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	var captureErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		p.scanWorker(ctx)
	}()
	go func() {
		defer wg.Done()
		captureErr = p.captureWorker(ctx)
	}()
	wg.Wait()

	return captureErr
}

// Stop просит поток захвата остановиться. Поток сканирования остановится по сигналу в очереди кадров.
func (p *Pipeline) Stop() {
	p.killOnce.Do(func() { close(p.kill) })
}

// Reset просит поток сканирования начать новый планшет
func (p *Pipeline) Reset() {
	select {
	case p.resets <- struct{}{}:
	default:
	}
}

// Status возвращает последнее опубликованное состояние сессии
func (p *Pipeline) Status() entity.SessionStatus {
	return *p.status.Load()
}

// Stats возвращает счётчики конвейера
func (p *Pipeline) Stats() PipelineStats {
	return PipelineStats{
		Captured: p.captured.Load(),
		Enqueued: p.enqueued.Load(),
		Shed:     p.shed.Load(),
		Scanned:  p.scanned.Load(),
		Results:  p.emitted.Load(),
	}
}

func (p *Pipeline) captureWorker(ctx context.Context) error {
	defer p.sendStop()
	defer func() {
		if err := p.display.Close(); err != nil {
			p.logger.Warn("failed to close display", "error", err)
		}
	}()

	source, err := p.openSource()
	if err != nil {
		p.logger.Error("capture worker stopped", "error", err)
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			p.logger.Warn("failed to release camera", "error", err)
		}
	}()

	sampler := NewSampler(p.opts.SampleInterval)
	var latest entity.Overlay
	failures := 0

	for {
		select {
		case <-p.kill:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			failures++
			if failures >= p.opts.MaxReadFailures {
				err = fmt.Errorf("%w: %d consecutive read failures: %w", ErrDeviceUnavailable, failures, err)
				p.logger.Error("capture worker stopped", "error", err)
				return err
			}
			continue
		}
		failures = 0
		p.captured.Add(1)

		p.offer(sampler, frame)

		if o, ok := p.overlays.DrainLatest(); ok {
			latest = o
		}

		switch p.display.Show(frame, latest) {
		case port.KeyQuit:
			p.logger.Info("exit key pressed")
			return nil
		case port.KeyReset:
			p.Reset()
		}
	}
}

// offer отправляет кадр на сканирование, если сэмплер разрешает; иначе кадр пропускается
func (p *Pipeline) offer(sampler *Sampler, frame *entity.Frame) {
	now := p.opts.Now()
	if !sampler.Allow(now, len(p.frames), cap(p.frames)) {
		p.shed.Add(1)
		return
	}
	select {
	case p.frames <- frameItem{frame: frame}:
		sampler.Mark(now)
		p.enqueued.Add(1)
	default:
		p.shed.Add(1)
	}
}

func (p *Pipeline) openSource() (port.FrameSource, error) {
	source, err := p.opener.Open(p.opts.CameraNumber)
	if err == nil {
		return source, nil
	}
	if p.opts.CameraFallback == p.opts.CameraNumber {
		return nil, fmt.Errorf("%w: camera %d: %w", ErrDeviceUnavailable, p.opts.CameraNumber, err)
	}

	p.logger.Warn("camera unavailable, trying fallback",
		"camera", p.opts.CameraNumber, "fallback", p.opts.CameraFallback, "error", err)

	source, ferr := p.opener.Open(p.opts.CameraFallback)
	if ferr != nil {
		return nil, fmt.Errorf("%w: camera %d: %w; fallback %d: %w",
			ErrDeviceUnavailable, p.opts.CameraNumber, err, p.opts.CameraFallback, ferr)
	}
	return source, nil
}

// sendStop кладёт сигнал остановки, чтобы поток сканирования не ждал кадр вечно
func (p *Pipeline) sendStop() {
	select {
	case p.frames <- stopItem{}:
	case <-p.scanDone:
	}
}

func (p *Pipeline) scanWorker(ctx context.Context) {
	defer close(p.scanDone)
	defer p.results.Close()

	for {
		select {
		case <-p.resets:
			p.session.Reset()
			p.publishStatus()
		case <-ctx.Done():
			return
		case item := <-p.frames:
			switch it := item.(type) {
			case stopItem:
				p.logger.Debug("scan worker received stop")
				return
			case frameItem:
				p.handleFrame(ctx, it.frame)
			}
		}
	}
}

func (p *Pipeline) handleFrame(ctx context.Context, frame *entity.Frame) {
	start := p.opts.Now()
	res := p.session.Process(ctx, frame)
	p.scanned.Add(1)

	if p.opts.ConsoleFrame && p.summary != nil {
		if err := WriteFrameSummary(p.summary, frame, res, p.opts.Now().Sub(start)); err != nil {
			p.logger.Debug("failed to write frame summary", "error", err)
		}
	}

	now := p.opts.Now()
	switch res.Outcome {
	case entity.OutcomeAlignmentFailed:
		if res.NoPlateDetected {
			p.overlays.Push(entity.TextOverlay(noPlateMessage(res.Err), entity.ColorRed, now))
		}
	case entity.OutcomeDuplicate:
		p.overlays.Push(entity.TextOverlay(scannedTag, entity.ColorGreen, now))
	default:
		if res.Plate.AnyValid() {
			p.overlays.Push(entity.PlateOverlay(res.Plate.Clone(), res.Alignment, now))
		}
		if res.AnyNewBarcodes {
			p.beep(res.Plate)
		}
	}

	if res.Outcome == entity.OutcomeNewBarcodes {
		p.results.Push(entity.PlateResult{Plate: res.Plate.Clone(), Frame: frame})
		p.emitted.Add(1)
		p.logger.Info("plate scanned",
			"frame", frame.Seq,
			"valid", res.Plate.NumValid(),
			"empty", res.Plate.NumEmpty(),
			"unreadable", res.Plate.NumUnreadable(),
			"slots", res.Plate.NumSlots())
	}

	p.publishStatus()
}

func (p *Pipeline) beep(plate *entity.Plate) {
	if !p.opts.Beep || p.tone == nil {
		return
	}
	if err := p.tone.Beep(ToneFrequency(plate), beepDuration); err != nil {
		p.logger.Debug("beep failed", "error", err)
	}
}

func (p *Pipeline) publishStatus() {
	st := p.session.Status()
	p.status.Store(&st)
}

// ToneFrequency высота сигнала: чем меньше прочитано, тем выше тон
func ToneFrequency(plate *entity.Plate) int {
	return int(10000*plate.EmptyFraction()) + 37
}

func noPlateMessage(err error) string {
	if err == nil {
		return "No plate detected"
	}
	return "No plate detected: " + strings.TrimPrefix(err.Error(), ErrAlignment.Error()+": ")
}
