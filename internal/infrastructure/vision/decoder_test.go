package vision

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/stretchr/testify/require"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
	"puck-scanner/internal/logging"
)

func uniformFrame(w, h int, v uint8) *entity.Frame {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return &entity.Frame{Seq: 1, Image: img}
}

const moduleSize = 4

// symbolFrame рисует DataMatrix-символ по центру белого кадра 200x200.
// damage инвертирует внутренние модули, не трогая рамку символа.
func symbolFrame(t *testing.T, data string, damage bool) (*entity.Frame, entity.Region, int) {
	t.Helper()
	matrix, err := datamatrix.NewDataMatrixWriter().Encode(data, gozxing.BarcodeFormat_DATA_MATRIX, 0, 0, nil)
	require.NoError(t, err)

	w, h := matrix.GetWidth(), matrix.GetHeight()
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	ox, oy := 100-w*moduleSize/2, 100-h*moduleSize/2
	for my := 0; my < h; my++ {
		for mx := 0; mx < w; mx++ {
			black := matrix.Get(mx, my)
			if damage && mx >= 2 && mx < w-2 && my >= 2 && my < h-2 {
				black = !black
			}
			if !black {
				continue
			}
			for py := 0; py < moduleSize; py++ {
				for px := 0; px < moduleSize; px++ {
					img.SetGray(ox+mx*moduleSize+px, oy+my*moduleSize+py, color.Gray{Y: 0})
				}
			}
		}
	}

	side := max(w, h) * moduleSize
	region := entity.Region{Center: entity.Point{X: 100, Y: 100}, Radius: 0.75 * float64(side)}
	return &entity.Frame{Seq: 1, Image: img}, region, side
}

func TestDataMatrixDecoder_ReadsSymbol(t *testing.T) {
	frame, region, side := symbolFrame(t, "PUCK-0042", false)
	dec := NewDataMatrixDecoder(side, "", logging.Discard())

	res := dec.Decode(context.Background(), frame, 0, region)
	require.Equal(t, entity.DecodeValid, res.Outcome)
	require.Equal(t, "PUCK-0042", res.Data)
	require.NotNil(t, res.Center)
	require.True(t, region.Contains(*res.Center), "center %v outside slot", *res.Center)
}

func TestDataMatrixDecoder_DamagedSymbolIsNotValid(t *testing.T) {
	frame, region, side := symbolFrame(t, "PUCK-0042", true)
	dec := NewDataMatrixDecoder(side, "", logging.Discard())

	res := dec.Decode(context.Background(), frame, 0, region)
	require.NotEqual(t, entity.DecodeValid, res.Outcome)
	require.NotEqual(t, entity.DecodeEmpty, res.Outcome)
}

func TestClassifyDecodeError(t *testing.T) {
	require.Equal(t, entity.DecodeUnreadable, classifyDecodeError(gozxing.NewChecksumException()).Outcome)
	require.Equal(t, entity.DecodeUnreadable, classifyDecodeError(gozxing.NewFormatException()).Outcome)
	require.Equal(t, entity.DecodeNoResult, classifyDecodeError(gozxing.NewNotFoundException()).Outcome)
	require.Equal(t, entity.DecodeNoResult, classifyDecodeError(errors.New("binarizer failed")).Outcome)
}

func TestSymbolCenter_OffsetsByCropOrigin(t *testing.T) {
	points := []gozxing.ResultPoint{
		gozxing.NewResultPoint(0, 0),
		gozxing.NewResultPoint(20, 0),
		gozxing.NewResultPoint(20, 10),
		gozxing.NewResultPoint(0, 10),
	}
	c, ok := symbolCenter(points, image.Pt(30, 40))
	require.True(t, ok)
	require.Equal(t, entity.Point{X: 40, Y: 45}, c)

	_, ok = symbolCenter(nil, image.Pt(30, 40))
	require.False(t, ok)
}

func TestDataMatrixDecoder_EmptySlot(t *testing.T) {
	dec := NewDataMatrixDecoder(10, "", logging.Discard())
	frame := uniformFrame(100, 100, 200)

	res := dec.Decode(context.Background(), frame, 0, entity.Region{Center: entity.Point{X: 50, Y: 50}, Radius: 20})
	require.Equal(t, entity.DecodeEmpty, res.Outcome)
}

func TestDataMatrixDecoder_OutsideFrame(t *testing.T) {
	dec := NewDataMatrixDecoder(10, "", logging.Discard())
	frame := uniformFrame(100, 100, 200)

	res := dec.Decode(context.Background(), frame, 0, entity.Region{Center: entity.Point{X: 500, Y: 500}, Radius: 20})
	require.Equal(t, entity.DecodeNoResult, res.Outcome)
}

func TestDataMatrixDecoder_NoiseIsNotASymbol(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	rnd := rand.New(rand.NewSource(1))
	for i := range img.Pix {
		img.Pix[i] = uint8(rnd.Intn(256))
	}
	dir := t.TempDir()
	dec := NewDataMatrixDecoder(10, dir, logging.Discard())

	res := dec.Decode(context.Background(), &entity.Frame{Seq: 7, Image: img}, 2,
		entity.Region{Center: entity.Point{X: 50, Y: 50}, Radius: 20})
	require.NotEqual(t, entity.DecodeValid, res.Outcome)
	require.NotEqual(t, entity.DecodeEmpty, res.Outcome)
	require.FileExists(t, filepath.Join(dir, "frame-000007-slot-03.png"))
}

func TestDataMatrixDecoder_CancelledContext(t *testing.T) {
	dec := NewDataMatrixDecoder(10, "", logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := dec.Decode(ctx, uniformFrame(10, 10, 0), 0, entity.Region{Radius: 5})
	require.Equal(t, entity.DecodeNoResult, res.Outcome)
}

func TestStdDev(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(1, 0, color.Gray{Y: 100})
	require.InDelta(t, 50, stdDev(img), 1e-9)
}

func TestHeadless_ShowNeverQuits(t *testing.T) {
	h := NewHeadless(logging.Discard())
	frame := uniformFrame(4, 4, 0)
	o := entity.TextOverlay("No plate detected", entity.ColorRed, h.now())
	require.Equal(t, port.KeyNone, h.Show(frame, o))
	require.NoError(t, h.Close())
}
