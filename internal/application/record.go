package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

// RecordService сохраняет разрешённые планшеты и уведомляет операторов
type RecordService struct {
	repo     port.RecordRepository
	images   port.ImageStore
	notifier port.ResultNotifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewRecordService создаёт сервис. images и notifier могут быть nil.
func NewRecordService(repo port.RecordRepository, images port.ImageStore, notifier port.ResultNotifier, logger *slog.Logger) *RecordService {
	return &RecordService{
		repo:     repo,
		images:   images,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// SetNotifier подключает уведомления после создания сервиса
func (s *RecordService) SetNotifier(n port.ResultNotifier) {
	s.notifier = n
}

// Store сохраняет планшет вместе с кадром
func (s *RecordService) Store(ctx context.Context, result entity.PlateResult) (*entity.ScanRecord, error) {
	if result.Plate == nil {
		return nil, errors.New("plate result has no plate")
	}

	scannedAt := s.now()
	if result.Frame != nil && !result.Frame.Timestamp.IsZero() {
		scannedAt = result.Frame.Timestamp
	}
	record := entity.NewScanRecord(uuid.NewString(), result.Plate, scannedAt)

	var encoded []byte
	if s.images != nil && result.Frame != nil && result.Frame.Image != nil {
		path, data, err := s.images.Save(ctx, record.ID, result.Frame.Image)
		if err != nil {
			return nil, fmt.Errorf("save plate image: %w", err)
		}
		record.ImagePath = path
		encoded = data
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("save scan record: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyRecord(ctx, record, encoded); err != nil {
			s.logger.Warn("failed to notify operators", "record", record.ID, "error", err)
		}
	}

	return record, nil
}

// Consume сохраняет результаты из очереди, пока она не закрыта
func (s *RecordService) Consume(ctx context.Context, results *Queue[entity.PlateResult]) {
	for {
		result, ok := results.Pop()
		if !ok {
			return
		}
		record, err := s.Store(ctx, result)
		if err != nil {
			s.logger.Error("failed to store scan", "error", err)
			continue
		}
		s.logger.Info("scan stored", "record", record.ID, "valid", record.NumValid, "slots", record.NumSlots, "image", record.ImagePath)
	}
}

// Get возвращает запись по ID
func (s *RecordService) Get(ctx context.Context, id string) (*entity.ScanRecord, error) {
	return s.repo.Get(ctx, id)
}

// List возвращает последние записи
func (s *RecordService) List(ctx context.Context, limit int) ([]*entity.ScanRecord, error) {
	return s.repo.List(ctx, limit)
}

// Latest возвращает последнюю запись или nil
func (s *RecordService) Latest(ctx context.Context) (*entity.ScanRecord, error) {
	records, err := s.repo.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}
