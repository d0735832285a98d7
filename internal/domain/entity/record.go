package entity

import "time"

// ScanRecord сохранённый результат сканирования планшета
type ScanRecord struct {
	ID        string
	PlateType string
	Barcodes  []string // данные слотов по индексам
	ImagePath string
	NumSlots  int
	NumValid  int
	ScannedAt time.Time
}

// NewScanRecord строит запись по разрешённому планшету
func NewScanRecord(id string, plate *Plate, scannedAt time.Time) *ScanRecord {
	return &ScanRecord{
		ID:        id,
		PlateType: plate.PlateType(),
		Barcodes:  plate.Barcodes(),
		NumSlots:  plate.NumSlots(),
		NumValid:  plate.NumValid(),
		ScannedAt: scannedAt,
	}
}
