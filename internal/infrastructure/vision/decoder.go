package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/datamatrix"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

const (
	// emptyStdDev ниже этого разброса яркости область считается пустой
	emptyStdDev = 6.0
	// slotMargin запас вокруг области слота при вырезании
	slotMargin = 1.2
)

// DataMatrixDecoder читает DataMatrix-штрихкоды в областях слотов
type DataMatrixDecoder struct {
	BarcodeSize int    // ожидаемый размер символа в пикселях
	DebugDir    string // каталог для изображений слотов, пустая строка отключает сохранение

	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
	logger *slog.Logger
}

// NewDataMatrixDecoder создаёт декодер
func NewDataMatrixDecoder(barcodeSize int, debugDir string, logger *slog.Logger) *DataMatrixDecoder {
	return &DataMatrixDecoder{
		BarcodeSize: barcodeSize,
		DebugDir:    debugDir,
		reader:      datamatrix.NewDataMatrixReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
		logger: logger,
	}
}

// Decode вырезает область слота и пытается прочитать символ
func (d *DataMatrixDecoder) Decode(ctx context.Context, frame *entity.Frame, slot int, region entity.Region) entity.DecodeResult {
	if ctx.Err() != nil {
		return entity.NoResult()
	}

	region = region.Grow(float64(d.BarcodeSize) / 2)
	region.Radius *= slotMargin

	crop := cropGray(frame.Gray(), region.Bounds())
	if crop == nil {
		return entity.NoResult()
	}
	d.dump(frame, slot, crop)

	if stdDev(crop) < emptyStdDev {
		return entity.Empty()
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(crop)
	if err != nil {
		d.logger.Debug("failed to binarize slot", "slot", slot, "error", err)
		return entity.NoResult()
	}

	result, err := d.reader.Decode(bmp, d.hints)
	if err != nil {
		return classifyDecodeError(err)
	}

	res := entity.Valid(result.GetText())
	if c, ok := symbolCenter(result.GetResultPoints(), crop.Bounds().Min); ok {
		res.Center = &c
	}
	return res
}

// classifyDecodeError: найденный, но не прочитанный символ даёт Unreadable, ненайденный даёт NoResult
func classifyDecodeError(err error) entity.DecodeResult {
	var checksum gozxing.ChecksumException
	var format gozxing.FormatException
	if errors.As(err, &checksum) || errors.As(err, &format) {
		return entity.Unreadable()
	}
	return entity.NoResult()
}

func symbolCenter(points []gozxing.ResultPoint, origin image.Point) (entity.Point, bool) {
	if len(points) == 0 {
		return entity.Point{}, false
	}
	var x, y float64
	for _, p := range points {
		x += p.GetX()
		y += p.GetY()
	}
	n := float64(len(points))
	return entity.Point{X: x/n + float64(origin.X), Y: y/n + float64(origin.Y)}, true
}

// cropGray копирует часть кадра; nil, если область вне кадра
func cropGray(src *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(src.Bounds())
	if r.Empty() {
		return nil
	}
	dst := image.NewGray(r)
	draw.Draw(dst, r, src, r.Min, draw.Src)
	return dst
}

func stdDev(img *image.Gray) float64 {
	b := img.Bounds()
	n := float64(b.Dx() * b.Dy())
	if n == 0 {
		return 0
	}
	var sum, sq float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := float64(img.GrayAt(x, y).Y)
			sum += v
			sq += v * v
		}
	}
	mean := sum / n
	return math.Sqrt(math.Max(sq/n-mean*mean, 0))
}

func (d *DataMatrixDecoder) dump(frame *entity.Frame, slot int, crop *image.Gray) {
	if d.DebugDir == "" {
		return
	}
	if err := os.MkdirAll(d.DebugDir, 0o755); err != nil {
		d.logger.Debug("failed to create slot image directory", "error", err)
		return
	}
	path := filepath.Join(d.DebugDir, fmt.Sprintf("frame-%06d-slot-%02d.png", frame.Seq, slot+1))
	f, err := os.Create(path)
	if err != nil {
		d.logger.Debug("failed to create slot image", "path", path, "error", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, crop); err != nil {
		d.logger.Debug("failed to write slot image", "path", path, "error", err)
	}
}

var _ port.SlotDecoder = (*DataMatrixDecoder)(nil)
