package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"puck-scanner/internal/domain/entity"
)

// Config настройки сканера. После Load не изменяется и передаётся в потоки как есть.
type Config struct {
	PlateType   string             `yaml:"plate_type"`   // тип планшета
	PlateTypes  []entity.PlateType `yaml:"plate_types"`  // дополнительные типы планшетов
	BarcodeSize int                `yaml:"barcode_size"` // ожидаемый размер символа в пикселях

	Camera CameraConfig `yaml:"camera"`
	Scan   ScanConfig   `yaml:"scan"`

	SlotImages         bool   `yaml:"slot_images"`          // сохранять изображения слотов
	SlotImageDirectory string `yaml:"slot_image_directory"` // каталог для изображений слотов
	StoreDirectory     string `yaml:"store_directory"`      // каталог базы и снимков

	Headless      bool   `yaml:"headless"` // без окна просмотра
	TelegramToken string `yaml:"telegram_token"`

	Log LogConfig `yaml:"log"`
}

// CameraConfig настройки камеры
type CameraConfig struct {
	Number   int `yaml:"number"`
	Fallback int `yaml:"fallback"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
}

// ScanConfig настройки непрерывного сканирования
type ScanConfig struct {
	MaxSampleRate  float64       `yaml:"max_sample_rate"`  // кадров в секунду на сканирование
	NoPuckTime     time.Duration `yaml:"no_puck_time"`     // сколько ждать до сообщения "планшет не найден"
	PuckResetAfter time.Duration `yaml:"puck_reset_after"` // сброс сессии после потери планшета, 0 отключает
	ConsoleFrame   bool          `yaml:"console_frame"`    // печатать сводку по каждому кадру
	Beep           bool          `yaml:"beep"`
}

// LogConfig настройки логирования
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default возвращает настройки по умолчанию
func Default() *Config {
	return &Config{
		PlateType:   entity.CPSPuck.Name,
		BarcodeSize: 24,
		Camera: CameraConfig{
			Number:   0,
			Fallback: 0,
			Width:    1920,
			Height:   1080,
		},
		Scan: ScanConfig{
			MaxSampleRate: 10,
			NoPuckTime:    2 * time.Second,
			Beep:          true,
		},
		SlotImageDirectory: "../debug-output/",
		StoreDirectory:     "../store/",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load собирает настройки: значения по умолчанию, YAML-файл, .env и переменные окружения
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("PUCKSCAN_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("PLATE_TYPE", &c.PlateType)
	num("BARCODE_SIZE", &c.BarcodeSize)
	num("CAMERA_NUMBER", &c.Camera.Number)
	num("CAMERA_FALLBACK", &c.Camera.Fallback)
	num("CAMERA_WIDTH", &c.Camera.Width)
	num("CAMERA_HEIGHT", &c.Camera.Height)
	float("MAX_SAMPLE_RATE", &c.Scan.MaxSampleRate)
	duration("NO_PUCK_TIME", &c.Scan.NoPuckTime)
	duration("PUCK_RESET_AFTER", &c.Scan.PuckResetAfter)
	flag("CONSOLE_FRAME", &c.Scan.ConsoleFrame)
	flag("SCAN_BEEP", &c.Scan.Beep)
	flag("SLOT_IMAGES", &c.SlotImages)
	str("SLOT_IMAGE_DIRECTORY", &c.SlotImageDirectory)
	str("STORE_DIRECTORY", &c.StoreDirectory)
	flag("HEADLESS", &c.Headless)
	str("TELEGRAM_TOKEN", &c.TelegramToken)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var errs []error
	if c.BarcodeSize <= 0 {
		errs = append(errs, errors.New("barcode_size must be positive"))
	}
	if c.Camera.Number < 0 || c.Camera.Fallback < 0 {
		errs = append(errs, errors.New("camera numbers must not be negative"))
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		errs = append(errs, errors.New("camera resolution must be positive"))
	}
	if c.Scan.MaxSampleRate <= 0 {
		errs = append(errs, errors.New("max_sample_rate must be positive"))
	}
	if c.Scan.NoPuckTime < 0 || c.Scan.PuckResetAfter < 0 {
		errs = append(errs, errors.New("scan timeouts must not be negative"))
	}
	if c.SlotImages && c.SlotImageDirectory == "" {
		errs = append(errs, errors.New("slot_image_directory is required when slot_images is enabled"))
	}
	if c.StoreDirectory == "" {
		errs = append(errs, errors.New("store_directory is required"))
	}
	for _, pt := range c.PlateTypes {
		if err := pt.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := c.ResolvePlateType(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SampleInterval минимальный интервал между кадрами, отправляемыми на сканирование
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.Scan.MaxSampleRate)
}

// KnownPlateTypes возвращает встроенные типы вместе с описанными в файле
func (c *Config) KnownPlateTypes() entity.PlateTypes {
	types := entity.DefaultPlateTypes()
	for _, pt := range c.PlateTypes {
		types[pt.Name] = pt
	}
	return types
}

// ResolvePlateType возвращает выбранный тип планшета
func (c *Config) ResolvePlateType() (entity.PlateType, error) {
	return c.KnownPlateTypes().Lookup(c.PlateType)
}
