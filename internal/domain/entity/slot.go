package entity

const (
	EmptySymbol      = "----EMPTY----" // данные пустого слота в записи
	NotFoundSymbol   = "-CANT-FIND-"   // данные слота без результата
	UnreadableSymbol = "-UNREADABLE-"  // данные нечитаемого штрихкода
)

// SlotStatus состояние слота в сессии сканирования
type SlotStatus int

const (
	SlotNoResult   SlotStatus = iota // штрихкод не найден
	SlotEmpty                        // в слоте нет пробирки
	SlotUnreadable                   // символ найден, но не прочитан
	SlotValid                        // штрихкод прочитан
)

func (s SlotStatus) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotUnreadable:
		return "unreadable"
	case SlotValid:
		return "valid"
	default:
		return "no_result"
	}
}

// Resolved сообщает, получен ли для слота окончательный результат
func (s SlotStatus) Resolved() bool {
	return s != SlotNoResult
}

// Barcode результат чтения штрихкода в слоте
type Barcode struct {
	data     string
	readable bool
}

// NewBarcode создаёт прочитанный штрихкод
func NewBarcode(data string) *Barcode {
	return &Barcode{data: data, readable: true}
}

// UnreadableBarcode создаёт штрихкод, который был найден, но не декодирован
func UnreadableBarcode() *Barcode {
	return &Barcode{}
}

// IsValid сообщает, что штрихкод прочитан и содержит данные
func (b *Barcode) IsValid() bool {
	return b != nil && b.readable && b.data != ""
}

// IsUnreadable сообщает, что символ найден, но не декодирован
func (b *Barcode) IsUnreadable() bool {
	return b != nil && !b.readable
}

// Data возвращает данные штрихкода или метку нечитаемого символа
func (b *Barcode) Data() string {
	if b == nil {
		return ""
	}
	if !b.readable {
		return UnreadableSymbol
	}
	return b.data
}

// Slot представляет одну пронумерованную позицию на планшете
type Slot struct {
	index         int
	bounds        Region
	hasBounds     bool
	barcodeCenter *Point
	barcode       *Barcode
	empty         bool

	totalFrames      int
	barcodeThisFrame bool
}

// NewSlot создаёт слот без результата
func NewSlot(index int) *Slot {
	return &Slot{index: index}
}

// Index возвращает номер слота (0..N-1)
func (s *Slot) Index() int {
	return s.index
}

// NewFrame вызывается в начале каждого кадра до любых изменений слота
func (s *Slot) NewFrame() {
	s.totalFrames++
	s.barcodeThisFrame = false
}

// TotalFrames возвращает число кадров, в которых участвовал слот
func (s *Slot) TotalFrames() int {
	return s.totalFrames
}

// SetBounds запоминает область слота, предсказанную геометрией на этом кадре
func (s *Slot) SetBounds(r Region) {
	s.bounds = r
	s.hasBounds = true
}

// Bounds возвращает область слота и признак того, что она задана
func (s *Slot) Bounds() (Region, bool) {
	return s.bounds, s.hasBounds
}

// SetBarcodeCenter запоминает уточнённый центр штрихкода
func (s *Slot) SetBarcodeCenter(p Point) {
	s.barcodeCenter = &p
}

// BarcodeCenter возвращает центр штрихкода, если он известен
func (s *Slot) BarcodeCenter() (Point, bool) {
	if s.barcodeCenter == nil {
		return Point{}, false
	}
	return *s.barcodeCenter, true
}

// SetBarcode записывает результат декодирования. nil означает, что чтение не выполнялось.
func (s *Slot) SetBarcode(b *Barcode) {
	if b == nil {
		return
	}
	s.barcode = b
	s.empty = false
	s.barcodeThisFrame = true
}

// SetEmpty помечает слот пустым и сбрасывает данные
func (s *Slot) SetEmpty() {
	s.barcode = nil
	s.empty = true
}

// SetNoResult сбрасывает слот в состояние без результата
func (s *Slot) SetNoResult() {
	s.barcode = nil
	s.empty = false
}

// BarcodeThisFrame сообщает, был ли штрихкод записан на текущем кадре
func (s *Slot) BarcodeThisFrame() bool {
	return s.barcodeThisFrame
}

// State вычисляет состояние слота.
// Приоритет: Empty > Unreadable > Valid > NoResult. Флаг пустоты побеждает любые старые данные.
func (s *Slot) State() SlotStatus {
	switch {
	case s.empty:
		return SlotEmpty
	case s.barcode.IsUnreadable():
		return SlotUnreadable
	case s.barcode.IsValid():
		return SlotValid
	default:
		return SlotNoResult
	}
}

// ContainsBarcode сообщает, найден ли в слоте символ штрихкода
func (s *Slot) ContainsBarcode() bool {
	state := s.State()
	return state == SlotUnreadable || state == SlotValid
}

// Barcode возвращает штрихкод слота, если слот не пуст
func (s *Slot) Barcode() *Barcode {
	if s.State() == SlotEmpty {
		return nil
	}
	return s.barcode
}

// Data возвращает строковое представление слота для записи результата
func (s *Slot) Data() string {
	switch s.State() {
	case SlotEmpty:
		return EmptySymbol
	case SlotUnreadable, SlotValid:
		return s.barcode.Data()
	default:
		return NotFoundSymbol
	}
}

func (s *Slot) clone() *Slot {
	c := *s
	if s.barcodeCenter != nil {
		p := *s.barcodeCenter
		c.barcodeCenter = &p
	}
	if s.barcode != nil {
		b := *s.barcode
		c.barcode = &b
	}
	return &c
}
