package entity

// OperatorState состояние оператора в боте
type OperatorState string

const (
	OperatorMuted      OperatorState = "muted"      // уведомления выключены
	OperatorSubscribed OperatorState = "subscribed" // получает результаты сканирования
)

// Operator представляет оператора сканера в Telegram
type Operator struct {
	ID     int64         // Telegram User ID
	ChatID int64         // Telegram Chat ID
	State  OperatorState // Текущее состояние оператора
}

// NewOperator создаёт оператора без подписки
func NewOperator(userID, chatID int64) *Operator {
	return &Operator{
		ID:     userID,
		ChatID: chatID,
		State:  OperatorMuted,
	}
}

// SetState обновляет состояние оператора
func (o *Operator) SetState(state OperatorState) {
	o.State = state
}

// Subscribed сообщает, получает ли оператор уведомления
func (o *Operator) Subscribed() bool {
	return o.State == OperatorSubscribed
}
