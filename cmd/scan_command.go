package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	telegram "puck-scanner/internal/api"
	"puck-scanner/internal/container"
	"puck-scanner/internal/domain/port"
	"puck-scanner/internal/infrastructure/notify"
	"puck-scanner/internal/infrastructure/storage"
	"puck-scanner/internal/infrastructure/vision"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		headless  bool
		plateType string
		camera    int
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan plates continuously from the camera",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("headless") {
				cfg.Headless = headless
			}
			if cmd.Flags().Changed("plate-type") {
				cfg.PlateType = plateType
			}
			if cmd.Flags().Changed("camera") {
				cfg.Camera.Number = camera
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lock, err := storage.LockDir(cfg.StoreDirectory)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release store lock", "error", err)
				}
			}()

			store, err := storage.OpenSQLite(runCtx, cfg.StoreDirectory)
			if err != nil {
				return err
			}
			defer store.Close()

			images := storage.NewFileImageStore(filepath.Join(cfg.StoreDirectory, "images"))
			c := container.New(cfg, logger, store.Records(), store.Operators(), images)

			pt, err := cfg.ResolvePlateType()
			if err != nil {
				return err
			}

			display := newDisplay(cfg.Headless, logger)
			debugDir := ""
			if cfg.SlotImages {
				debugDir = cfg.SlotImageDirectory
			}

			pipeline, err := c.Pipeline(
				vision.NewCircleAligner(pt),
				vision.NewDataMatrixDecoder(cfg.BarcodeSize, debugDir, logger),
				vision.NewCameraOpener(cfg.Camera.Width, cfg.Camera.Height),
				display,
				notify.NewBeeper(),
				cmd.OutOrStdout(),
			)
			if err != nil {
				return err
			}

			var wg sync.WaitGroup
			if cfg.TelegramToken != "" {
				bot, err := telegram.NewBot(cfg.TelegramToken, c.OperatorService, c.RecordService, pipeline, logger)
				if err != nil {
					return fmt.Errorf("create telegram bot: %w", err)
				}
				c.RecordService.SetNotifier(bot)
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := bot.Run(runCtx); err != nil {
						logger.Error("telegram bot stopped", "error", err)
					}
				}()
			}

			// Сохранение результатов переживает отмену: оставшиеся в очереди планшеты дописываются
			consumed := make(chan struct{})
			go func() {
				defer close(consumed)
				c.RecordService.Consume(context.WithoutCancel(runCtx), pipeline.Results())
			}()

			logger.Info("scanning started",
				"plate_type", pt.Name,
				"slots", pt.NumSlots(),
				"camera", cfg.Camera.Number,
				"store", store.Path(),
				"lock", lock.Path())

			runErr := pipeline.Run(runCtx)
			<-consumed
			stop()
			wg.Wait()

			stats := pipeline.Stats()
			logger.Info("scanning stopped",
				"captured", stats.Captured,
				"scanned", stats.Scanned,
				"shed", stats.Shed,
				"plates", stats.Results)
			return runErr
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Run without a preview window")
	cmd.Flags().StringVar(&plateType, "plate-type", "", "Plate type to scan")
	cmd.Flags().IntVar(&camera, "camera", 0, "Camera device number")

	return cmd
}

// newDisplay открывает окно просмотра только вне режима headless
func newDisplay(headless bool, logger *slog.Logger) port.Display {
	if headless {
		return vision.NewHeadless(logger)
	}
	return vision.NewWindow()
}
