package app

import (
	"context"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

// OperatorService управляет подпиской операторов на результаты сканирования
type OperatorService struct {
	repo port.OperatorRepository
}

func NewOperatorService(repo port.OperatorRepository) *OperatorService {
	return &OperatorService{repo: repo}
}

// Subscribe включает уведомления. changed ложно, если оператор уже был подписан.
func (s *OperatorService) Subscribe(ctx context.Context, userID, chatID int64) (operator *entity.Operator, changed bool, err error) {
	return s.switchTo(ctx, userID, chatID, entity.OperatorSubscribed)
}

// Unsubscribe выключает уведомления. changed ложно, если они уже были выключены.
func (s *OperatorService) Unsubscribe(ctx context.Context, userID, chatID int64) (operator *entity.Operator, changed bool, err error) {
	return s.switchTo(ctx, userID, chatID, entity.OperatorMuted)
}

// Subscribers возвращает операторов, которым отправляются результаты
func (s *OperatorService) Subscribers(ctx context.Context) ([]*entity.Operator, error) {
	return s.repo.ListSubscribed(ctx)
}

// switchTo сохраняет оператора только при смене состояния или чата
func (s *OperatorService) switchTo(ctx context.Context, userID, chatID int64, state entity.OperatorState) (*entity.Operator, bool, error) {
	operator, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, false, err
	}

	changed := operator.State != state
	if !changed && operator.ChatID == chatID {
		return operator, false, nil
	}

	operator.ChatID = chatID
	operator.SetState(state)
	if err := s.repo.Save(ctx, operator); err != nil {
		return nil, false, err
	}
	return operator, changed, nil
}
