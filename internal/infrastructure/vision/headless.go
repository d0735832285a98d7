package vision

import (
	"log/slog"
	"time"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

// Headless заменяет окно просмотра при работе без дисплея.
// Вместо рисования пишет в лог статусные сообщения подсветки.
type Headless struct {
	logger   *slog.Logger
	now      func() time.Time
	lastText time.Time
}

// NewHeadless создаёт дисплей без окна
func NewHeadless(logger *slog.Logger) *Headless {
	return &Headless{logger: logger, now: time.Now}
}

func (h *Headless) Show(frame *entity.Frame, overlay entity.Overlay) port.Key {
	text, _, ok := OverlayText(overlay, h.now())
	if ok && !overlay.CreatedAt.Equal(h.lastText) {
		h.lastText = overlay.CreatedAt
		h.logger.Info("scanner status", "frame", frame.Seq, "message", text)
	}
	return port.KeyNone
}

func (h *Headless) Close() error {
	return nil
}

var _ port.Display = (*Headless)(nil)
