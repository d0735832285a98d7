package app

import (
	"context"
	"log/slog"
	"time"

	"puck-scanner/internal/domain/entity"
)

// SessionOptions параметры сессии сканирования
type SessionOptions struct {
	NoPuckTime time.Duration    // после этого времени без совмещения планшет считается потерянным
	ResetAfter time.Duration    // сброс накопленного снимка после потери, 0 отключает
	Now        func() time.Time // часы, по умолчанию time.Now
}

// ScanSession автомат состояний непрерывного сканирования одного планшета.
// Принадлежит потоку сканирования и не используется из других горутин.
type ScanSession struct {
	merger     *PlateMerger
	duplicates *DuplicateDetector
	opts       SessionOptions
	logger     *slog.Logger

	state       entity.SessionState
	plate       *entity.Plate
	frames      int
	lastSeen    time.Time
	lastAligned time.Time
	lastOutcome entity.Outcome
}

// NewScanSession создаёт сессию в состоянии Idle
func NewScanSession(merger *PlateMerger, opts SessionOptions, logger *slog.Logger) *ScanSession {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ScanSession{
		merger:     merger,
		duplicates: NewDuplicateDetector(),
		opts:       opts,
		logger:     logger,
		state:      entity.SessionIdle,
	}
}

// State возвращает текущее состояние
func (s *ScanSession) State() entity.SessionState {
	return s.state
}

// Plate возвращает текущий лучший снимок
func (s *ScanSession) Plate() *entity.Plate {
	return s.plate
}

// Process обрабатывает один кадр
func (s *ScanSession) Process(ctx context.Context, frame *entity.Frame) entity.ScanResult {
	now := s.opts.Now()
	if s.state == entity.SessionIdle {
		s.state = entity.SessionAligning
		s.lastSeen = now
	}
	s.frames++

	plate, alignment, err := s.merger.Merge(ctx, s.plate, frame)
	if err != nil {
		res := s.alignmentFailed(now, err)
		s.lastOutcome = res.Outcome
		return res
	}

	if s.state == entity.SessionLostAlignment {
		s.logger.Info("plate realigned", "frame", frame.Seq, "resolved", plate.NumResolved())
	}
	s.plate = plate
	s.lastSeen = now
	s.lastAligned = now

	res := entity.ScanResult{
		Plate:          plate,
		Alignment:      alignment,
		AnyNewBarcodes: plate.AnyNewBarcodes(),
	}

	switch {
	case s.duplicates.IsDuplicate(plate):
		res.Outcome = entity.OutcomeDuplicate
		s.state = entity.SessionResolved
	case plate.IsResolved() && res.AnyNewBarcodes:
		res.Outcome = entity.OutcomeNewBarcodes
		s.duplicates.Remember(plate)
		s.state = entity.SessionResolved
	default:
		res.Outcome = entity.OutcomePartialProgress
		s.state = entity.SessionAccumulating
	}

	s.lastOutcome = res.Outcome
	return res
}

func (s *ScanSession) alignmentFailed(now time.Time, err error) entity.ScanResult {
	res := entity.ScanResult{Outcome: entity.OutcomeAlignmentFailed, Err: err}

	since := now.Sub(s.lastSeen)
	if since <= s.opts.NoPuckTime {
		return res
	}
	res.NoPlateDetected = true

	if s.plate != nil && s.state != entity.SessionLostAlignment {
		s.state = entity.SessionLostAlignment
		s.logger.Info("plate alignment lost", "after", since.Round(time.Millisecond), "resolved", s.plate.NumResolved())
	}

	if s.opts.ResetAfter > 0 && s.plate != nil && since > s.opts.ResetAfter {
		s.logger.Info("plate removed, discarding partial scan", "after", since.Round(time.Millisecond))
		s.plate = nil
		s.state = entity.SessionAligning
	}
	return res
}

// Reset начинает сессию заново: ожидается новый планшет.
// Последний отправленный планшет остаётся запомненным.
func (s *ScanSession) Reset() {
	s.plate = nil
	s.frames = 0
	s.state = entity.SessionIdle
	s.lastSeen = time.Time{}
	s.lastAligned = time.Time{}
	s.logger.Info("scan session reset")
}

// Status возвращает снимок состояния для наблюдателей
func (s *ScanSession) Status() entity.SessionStatus {
	st := entity.SessionStatus{
		State:       s.state,
		PlateType:   s.merger.PlateType().Name,
		Frames:      s.frames,
		NumSlots:    s.merger.PlateType().NumSlots(),
		LastAligned: s.lastAligned,
		LastOutcome: s.lastOutcome,
	}
	if s.plate != nil {
		st.NumValid = s.plate.NumValid()
		st.NumEmpty = s.plate.NumEmpty()
		st.NumResolved = s.plate.NumResolved()
	}
	return st
}
