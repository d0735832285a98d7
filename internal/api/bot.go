package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "puck-scanner/internal/application"
	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

const (
	msgStart = `👋 Привет! Я сообщаю о планшетах, отсканированных сканером штрихкодов.

🔔 Уведомления включены: после каждого полностью разобранного планшета придёт фото и список штрихкодов.

📋 Команды:
/status — состояние сканера
/last — последний планшет
/reset — ждать новый планшет
/stop — выключить уведомления
/help — справка`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Поставьте планшет под камеру
2️⃣ Сканер накапливает штрихкоды по нескольким кадрам
3️⃣ Когда все слоты разобраны, придёт результат

📋 Команды:
/start — включить уведомления
/stop — выключить уведомления
/status — состояние сканера
/last — последний планшет
/reset — начать новый планшет`

	msgStopped        = "🔕 Уведомления выключены. Отправьте /start, чтобы включить."
	msgAlreadyStopped = "🔕 Уведомления уже выключены."
	msgReset          = "🔄 Сканер ждёт новый планшет."
	msgNoRecords      = "📭 Планшетов пока нет."
	msgUnknownCommand = "❓ Неизвестная команда. Используйте /help для справки."
	msgSendCommand    = "⌨️ Я понимаю только команды. Используйте /help для справки."
	msgError          = "⚠️ Не удалось выполнить команду. Попробуйте позже."
)

// Scanner управление конвейером сканирования из бота
type Scanner interface {
	Status() entity.SessionStatus
	Stats() app.PipelineStats
	Reset()
}

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot представляет Telegram-бота оператора
type Bot struct {
	api       botAPI
	operators *app.OperatorService
	records   *app.RecordService
	scanner   Scanner
	logger    *slog.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, operators *app.OperatorService, records *app.RecordService, scanner Scanner, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info("telegram bot authorized", "account", api.Self.UserName)

	return newBot(api, operators, records, scanner, logger), nil
}

func newBot(api botAPI, operators *app.OperatorService, records *app.RecordService, scanner Scanner, logger *slog.Logger) *Bot {
	return &Bot{
		api:       api,
		operators: operators,
		records:   records,
		scanner:   scanner,
		logger:    logger,
	}
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// NotifyRecord рассылает результат сканирования подписанным операторам
func (b *Bot) NotifyRecord(ctx context.Context, record *entity.ScanRecord, image []byte) error {
	operators, err := b.operators.Subscribers(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}

	text := formatRecord(record)
	var failed int
	for _, op := range operators {
		var msg tgbotapi.Chattable
		if len(image) > 0 {
			photo := tgbotapi.NewPhoto(op.ChatID, tgbotapi.FileBytes{Name: record.ID + ".jpg", Bytes: image})
			photo.Caption = text
			msg = photo
		} else {
			msg = tgbotapi.NewMessage(op.ChatID, text)
		}
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Warn("failed to send scan result", "chat", op.ChatID, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("scan result not delivered to %d of %d operators", failed, len(operators))
	}
	return nil
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	if !msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, msgSendCommand)
		return
	}
	b.handleCommand(ctx, msg)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, _, err := b.operators.Subscribe(ctx, msg.From.ID, chatID); err != nil {
			b.logger.Error("failed to subscribe operator", "user", msg.From.ID, "error", err)
			b.sendMessage(chatID, msgError)
			return
		}
		b.sendMessage(chatID, msgStart)

	case "stop":
		_, changed, err := b.operators.Unsubscribe(ctx, msg.From.ID, chatID)
		if err != nil {
			b.logger.Error("failed to unsubscribe operator", "user", msg.From.ID, "error", err)
			b.sendMessage(chatID, msgError)
			return
		}
		if !changed {
			b.sendMessage(chatID, msgAlreadyStopped)
			return
		}
		b.sendMessage(chatID, msgStopped)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "status":
		b.sendMessage(chatID, formatStatus(b.scanner.Status(), b.scanner.Stats()))

	case "reset":
		b.scanner.Reset()
		b.logger.Info("scan reset requested from telegram", "user", msg.From.ID)
		b.sendMessage(chatID, msgReset)

	case "last":
		record, err := b.records.Latest(ctx)
		if err != nil {
			b.logger.Error("failed to load last record", "error", err)
			b.sendMessage(chatID, msgError)
			return
		}
		if record == nil {
			b.sendMessage(chatID, msgNoRecords)
			return
		}
		b.sendMessage(chatID, formatRecord(record))

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send message", "chat", chatID, "error", err)
	}
}

func formatRecord(r *entity.ScanRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Планшет %s: прочитано %d из %d\n", r.PlateType, r.NumValid, r.NumSlots)
	fmt.Fprintf(&sb, "🕒 %s\n", r.ScannedAt.Local().Format("2006-01-02 15:04:05"))
	for i, code := range r.Barcodes {
		fmt.Fprintf(&sb, "%2d. %s\n", i+1, code)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatStatus(st entity.SessionStatus, stats app.PipelineStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📷 Состояние: %s\n", st.State)
	fmt.Fprintf(&sb, "Планшет: %s, разобрано %d из %d (прочитано %d, пустых %d)\n",
		st.PlateType, st.NumResolved, st.NumSlots, st.NumValid, st.NumEmpty)
	if !st.LastAligned.IsZero() {
		fmt.Fprintf(&sb, "Последнее совмещение: %s\n", st.LastAligned.Local().Format("15:04:05"))
	}
	fmt.Fprintf(&sb, "Кадров: захвачено %d, просканировано %d, пропущено %d, планшетов %d",
		stats.Captured, stats.Scanned, stats.Shed, stats.Results)
	return sb.String()
}

var _ port.ResultNotifier = (*Bot)(nil)
