//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

// CameraOpener открывает камеры через OpenCV
type CameraOpener struct {
	Width  int
	Height int
}

// NewCameraOpener создаёт открыватель камер с желаемым разрешением
func NewCameraOpener(width, height int) *CameraOpener {
	return &CameraOpener{Width: width, Height: height}
}

// Open открывает устройство и проверяет, что с него читается кадр
func (o *CameraOpener) Open(device int) (port.FrameSource, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", device, err)
	}
	if !capture.IsOpened() {
		_ = capture.Close()
		return nil, fmt.Errorf("open camera %d: device is not opened", device)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(o.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(o.Height))

	cam := &Camera{capture: capture, mat: gocv.NewMat()}
	if !capture.Read(&cam.mat) || cam.mat.Empty() {
		_ = cam.Close()
		return nil, fmt.Errorf("open camera %d: no frames", device)
	}
	return cam, nil
}

// Camera источник кадров OpenCV
type Camera struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
	seq     uint64
}

// Read читает следующий кадр. Изображение копируется, кадр можно передавать в другой поток.
func (c *Camera) Read(ctx context.Context) (*entity.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.capture.Read(&c.mat) || c.mat.Empty() {
		return nil, errors.New("camera returned no frame")
	}

	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}

	c.seq++
	return &entity.Frame{Seq: c.seq, Timestamp: time.Now(), Image: img}, nil
}

// Close освобождает камеру
func (c *Camera) Close() error {
	_ = c.mat.Close()
	return c.capture.Close()
}

var _ port.FrameSourceOpener = (*CameraOpener)(nil)
