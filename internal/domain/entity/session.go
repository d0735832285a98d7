package entity

import "time"

// SessionState состояние сессии сканирования
type SessionState string

const (
	SessionIdle          SessionState = "idle"           // планшет ещё не искали
	SessionAligning      SessionState = "aligning"       // кадры идут, геометрия не найдена
	SessionAccumulating  SessionState = "accumulating"   // накопление результатов
	SessionResolved      SessionState = "resolved"       // результат отправлен
	SessionLostAlignment SessionState = "lost_alignment" // планшет потерян дольше допустимого
)

// SessionStatus неизменяемый снимок состояния сессии для внешних наблюдателей
type SessionStatus struct {
	State       SessionState
	PlateType   string
	Frames      int
	NumSlots    int
	NumValid    int
	NumEmpty    int
	NumResolved int
	LastAligned time.Time
	LastOutcome Outcome
}
