package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

// ErrNotFound запись не найдена
var ErrNotFound = errors.New("record not found")

// MemoryRecordRepository in-memory хранилище результатов сканирования
type MemoryRecordRepository struct {
	mu      sync.RWMutex
	records map[string]*entity.ScanRecord
}

// NewMemoryRecordRepository создаёт новое in-memory хранилище
func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{
		records: make(map[string]*entity.ScanRecord),
	}
}

func (r *MemoryRecordRepository) Save(ctx context.Context, record *entity.ScanRecord) error {
	r.mu.Lock()
	r.records[record.ID] = copyRecord(record)
	r.mu.Unlock()

	return nil
}

func (r *MemoryRecordRepository) Get(ctx context.Context, id string) (*entity.ScanRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyRecord(record), nil
}

func (r *MemoryRecordRepository) List(ctx context.Context, limit int) ([]*entity.ScanRecord, error) {
	r.mu.RLock()
	out := make([]*entity.ScanRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, copyRecord(record))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ScannedAt.Equal(out[j].ScannedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].ScannedAt.After(out[j].ScannedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyRecord(r *entity.ScanRecord) *entity.ScanRecord {
	c := *r
	c.Barcodes = append([]string(nil), r.Barcodes...)
	return &c
}

var _ port.RecordRepository = (*MemoryRecordRepository)(nil)
