package container

import (
	"io"
	"log/slog"

	"puck-scanner/config"
	app "puck-scanner/internal/application"
	"puck-scanner/internal/domain/port"
)

// maxReadFailures подряд неудачных чтений кадра до остановки сканирования
const maxReadFailures = 30

type Container struct {
	Config *config.Config
	Logger *slog.Logger

	OperatorService *app.OperatorService
	RecordService   *app.RecordService
}

func New(cfg *config.Config, logger *slog.Logger, records port.RecordRepository, operators port.OperatorRepository, images port.ImageStore) *Container {
	return &Container{
		Config:          cfg,
		Logger:          logger,
		OperatorService: app.NewOperatorService(operators),
		RecordService:   app.NewRecordService(records, images, nil, logger),
	}
}

// Pipeline собирает конвейер сканирования для выбранного типа планшета
func (c *Container) Pipeline(aligner port.GeometryAligner, decoder port.SlotDecoder, opener port.FrameSourceOpener, display port.Display, tone port.ToneEmitter, summary io.Writer) (*app.Pipeline, error) {
	plateType, err := c.Config.ResolvePlateType()
	if err != nil {
		return nil, err
	}

	merger := app.NewPlateMerger(plateType, aligner, decoder)
	session := app.NewScanSession(merger, app.SessionOptions{
		NoPuckTime: c.Config.Scan.NoPuckTime,
		ResetAfter: c.Config.Scan.PuckResetAfter,
	}, c.Logger)

	opts := app.PipelineOptions{
		SampleInterval:  c.Config.SampleInterval(),
		CameraNumber:    c.Config.Camera.Number,
		CameraFallback:  c.Config.Camera.Fallback,
		MaxReadFailures: maxReadFailures,
		ConsoleFrame:    c.Config.Scan.ConsoleFrame,
		Beep:            c.Config.Scan.Beep,
	}
	return app.NewPipeline(opts, opener, display, session, tone, summary, c.Logger), nil
}
