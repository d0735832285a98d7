package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	app "puck-scanner/internal/application"
	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/infrastructure/storage"
	"puck-scanner/internal/logging"
)

type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	updates chan tgbotapi.Update
	sendErr error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.PhotoConfig:
			out = append(out, m.Caption)
		}
	}
	return out
}

type fakeScanner struct {
	resets int
}

func (s *fakeScanner) Status() entity.SessionStatus {
	return entity.SessionStatus{State: entity.SessionAccumulating, PlateType: "CPS_Puck", NumSlots: 16, NumResolved: 9, NumValid: 7, NumEmpty: 2}
}

func (s *fakeScanner) Stats() app.PipelineStats {
	return app.PipelineStats{Captured: 300, Scanned: 40, Shed: 260, Results: 1}
}

func (s *fakeScanner) Reset() { s.resets++ }

type botFixture struct {
	api     *fakeAPI
	scanner *fakeScanner
	records *app.RecordService
	bot     *Bot
}

func newBotFixture() *botFixture {
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 4)}
	scanner := &fakeScanner{}
	records := app.NewRecordService(storage.NewMemoryRecordRepository(), nil, nil, logging.Discard())
	operators := app.NewOperatorService(storage.NewMemoryOperatorRepository())
	return &botFixture{
		api:     api,
		scanner: scanner,
		records: records,
		bot:     newBot(api, operators, records, scanner, logging.Discard()),
	}
}

func command(userID, chatID int64, text string) *tgbotapi.Message {
	cmd := text
	for i, r := range text {
		if r == ' ' {
			cmd = text[:i]
			break
		}
	}
	return &tgbotapi.Message{
		Text:     text,
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func TestBot_StartSubscribesAndReceivesResults(t *testing.T) {
	f := newBotFixture()
	ctx := context.Background()

	f.bot.handleMessage(ctx, command(1, 10, "/start"))
	require.Equal(t, []string{msgStart}, f.api.texts())

	record := &entity.ScanRecord{ID: "r1", PlateType: "CPS_Puck", Barcodes: []string{"A1", entity.EmptySymbol}, NumSlots: 2, NumValid: 1, ScannedAt: time.Now()}
	require.NoError(t, f.bot.NotifyRecord(ctx, record, []byte{0xff, 0xd8}))

	texts := f.api.texts()
	require.Len(t, texts, 2)
	require.Contains(t, texts[1], "прочитано 1 из 2")
	require.Contains(t, texts[1], " 1. A1")
	_, isPhoto := f.api.sent[1].(tgbotapi.PhotoConfig)
	require.True(t, isPhoto)
}

func TestBot_StopUnsubscribes(t *testing.T) {
	f := newBotFixture()
	ctx := context.Background()

	f.bot.handleMessage(ctx, command(1, 10, "/start"))
	f.bot.handleMessage(ctx, command(1, 10, "/stop"))

	record := &entity.ScanRecord{ID: "r1", Barcodes: []string{"A1"}, NumSlots: 1, NumValid: 1}
	require.NoError(t, f.bot.NotifyRecord(ctx, record, nil))
	require.Equal(t, []string{msgStart, msgStopped}, f.api.texts())
}

func TestBot_StopWithoutSubscription(t *testing.T) {
	f := newBotFixture()

	f.bot.handleMessage(context.Background(), command(1, 10, "/stop"))
	require.Equal(t, []string{msgAlreadyStopped}, f.api.texts())
}

func TestBot_NotifyReportsSendFailures(t *testing.T) {
	f := newBotFixture()
	ctx := context.Background()
	f.bot.handleMessage(ctx, command(1, 10, "/start"))
	f.api.sendErr = errors.New("blocked by user")

	err := f.bot.NotifyRecord(ctx, &entity.ScanRecord{ID: "r1"}, nil)
	require.ErrorContains(t, err, "1 of 1")
}

func TestBot_StatusAndReset(t *testing.T) {
	f := newBotFixture()
	ctx := context.Background()

	f.bot.handleMessage(ctx, command(1, 10, "/status"))
	f.bot.handleMessage(ctx, command(1, 10, "/reset"))

	texts := f.api.texts()
	require.Len(t, texts, 2)
	require.Contains(t, texts[0], "accumulating")
	require.Contains(t, texts[0], "разобрано 9 из 16")
	require.Contains(t, texts[0], "пропущено 260")
	require.Equal(t, msgReset, texts[1])
	require.Equal(t, 1, f.scanner.resets)
}

func TestBot_Last(t *testing.T) {
	f := newBotFixture()
	ctx := context.Background()

	f.bot.handleMessage(ctx, command(1, 10, "/last"))
	require.Equal(t, []string{msgNoRecords}, f.api.texts())

	plate := entity.NewPlate("CPS_Puck", 1)
	plate.Slot(0).SetBarcode(entity.NewBarcode("DLSL-0001"))
	plate.Recount()
	_, err := f.records.Store(ctx, entity.PlateResult{Plate: plate})
	require.NoError(t, err)

	f.bot.handleMessage(ctx, command(1, 10, "/last"))
	require.Contains(t, f.api.texts()[1], "DLSL-0001")
}

func TestBot_UnknownInput(t *testing.T) {
	f := newBotFixture()
	ctx := context.Background()

	f.bot.handleMessage(ctx, command(1, 10, "/check"))
	f.bot.handleMessage(ctx, &tgbotapi.Message{Text: "hello", From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 10}})

	require.Equal(t, []string{msgUnknownCommand, msgSendCommand}, f.api.texts())
}

func TestBot_RunStopsOnContextCancel(t *testing.T) {
	f := newBotFixture()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.bot.Run(ctx) }()

	f.api.updates <- tgbotapi.Update{Message: command(1, 10, "/help")}
	require.Eventually(t, func() bool { return len(f.api.texts()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.Equal(t, msgHelp, f.api.texts()[0])
}
