package storage

import (
	"context"
	"sort"
	"sync"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

// MemoryOperatorRepository in-memory хранилище операторов
type MemoryOperatorRepository struct {
	mu        sync.RWMutex
	operators map[int64]*entity.Operator
}

// NewMemoryOperatorRepository создаёт новое in-memory хранилище
func NewMemoryOperatorRepository() *MemoryOperatorRepository {
	return &MemoryOperatorRepository{
		operators: make(map[int64]*entity.Operator),
	}
}

// Get возвращает оператора по ID, создаёт нового если не найден
func (r *MemoryOperatorRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if operator, exists := r.operators[userID]; exists {
		copied := *operator
		return &copied, nil
	}

	operator := entity.NewOperator(userID, chatID)
	r.operators[userID] = operator

	copied := *operator
	return &copied, nil
}

// Save сохраняет состояние оператора
func (r *MemoryOperatorRepository) Save(ctx context.Context, operator *entity.Operator) error {
	copied := *operator

	r.mu.Lock()
	r.operators[operator.ID] = &copied
	r.mu.Unlock()

	return nil
}

// ListSubscribed возвращает подписанных операторов по возрастанию ID
func (r *MemoryOperatorRepository) ListSubscribed(ctx context.Context) ([]*entity.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Operator
	for _, operator := range r.operators {
		if operator.Subscribed() {
			copied := *operator
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Проверка реализации интерфейса
var _ port.OperatorRepository = (*MemoryOperatorRepository)(nil)
