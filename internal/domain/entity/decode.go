package entity

// DecodeOutcome итог попытки прочитать штрихкод в слоте
type DecodeOutcome int

const (
	DecodeNoResult   DecodeOutcome = iota // символ не обнаружен
	DecodeEmpty                           // слот пуст
	DecodeUnreadable                      // символ найден, но не прочитан
	DecodeValid                           // штрихкод прочитан
)

func (o DecodeOutcome) String() string {
	switch o {
	case DecodeEmpty:
		return "empty"
	case DecodeUnreadable:
		return "unreadable"
	case DecodeValid:
		return "valid"
	default:
		return "no_result"
	}
}

// DecodeResult результат декодирования одного слота
type DecodeResult struct {
	Outcome DecodeOutcome
	Data    string // только для DecodeValid
	Center  *Point // уточнённый центр символа, если известен
}

// Valid создаёт результат успешного чтения
func Valid(data string) DecodeResult {
	return DecodeResult{Outcome: DecodeValid, Data: data}
}

// Unreadable создаёт результат нечитаемого символа
func Unreadable() DecodeResult {
	return DecodeResult{Outcome: DecodeUnreadable}
}

// Empty создаёт результат пустого слота
func Empty() DecodeResult {
	return DecodeResult{Outcome: DecodeEmpty}
}

// NoResult создаёт результат без обнаруженного символа
func NoResult() DecodeResult {
	return DecodeResult{Outcome: DecodeNoResult}
}

// Alignment результат совмещения геометрии планшета с кадром
type Alignment struct {
	Center  Point    // центр планшета
	Radius  float64  // радиус планшета
	Regions []Region // области слотов в порядке индексов
}
