package entity

// Outcome итог обработки кадра движком слияния
type Outcome int

const (
	OutcomeAlignmentFailed Outcome = iota
	OutcomeDuplicate
	OutcomePartialProgress
	OutcomeNewBarcodes
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlignmentFailed:
		return "alignment_failed"
	case OutcomeDuplicate:
		return "duplicate_of_last_reported"
	case OutcomePartialProgress:
		return "partial_progress"
	case OutcomeNewBarcodes:
		return "new_barcodes_found"
	default:
		return "unknown"
	}
}

// ScanResult результат обработки одного кадра
type ScanResult struct {
	Outcome         Outcome
	Plate           *Plate     // текущий снимок, если геометрия совмещена
	Alignment       *Alignment // геометрия планшета на кадре
	Err             error      // причина неудачи совмещения
	AnyNewBarcodes  bool       // на кадре прочитан хотя бы один новый штрихкод
	NoPlateDetected bool       // планшет не виден дольше допустимого
}

// Success сообщает, что геометрия совмещена
func (r ScanResult) Success() bool {
	return r.Outcome != OutcomeAlignmentFailed
}

// PlateResult полностью разрешённый планшет вместе с исходным кадром
type PlateResult struct {
	Plate *Plate
	Frame *Frame
}
