package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion текущая версия схемы. При изменении схемы базу нужно удалить.
const schemaVersion = 1

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// ErrSchemaMismatch версия схемы базы не совпадает с ожидаемой
var ErrSchemaMismatch = errors.New("schema version mismatch")

// SQLiteStore хранит результаты сканирования и операторов в SQLite
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite открывает или создаёт базу scans.db в каталоге dir
func OpenSQLite(ctx context.Context, dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	path := filepath.Join(dir, "scans.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path возвращает путь к файлу базы
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close закрывает соединение с базой
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *SQLiteStore) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// SQLiteRecordRepository записи сканирования в SQLite
type SQLiteRecordRepository struct {
	store *SQLiteStore
}

// Records возвращает хранилище записей сканирования
func (s *SQLiteStore) Records() *SQLiteRecordRepository {
	return &SQLiteRecordRepository{store: s}
}

const recordColumns = "id, plate_type, barcodes_json, image_path, num_slots, num_valid, scanned_at"

func (r *SQLiteRecordRepository) Save(ctx context.Context, record *entity.ScanRecord) error {
	barcodes, err := json.Marshal(record.Barcodes)
	if err != nil {
		return fmt.Errorf("marshal barcodes: %w", err)
	}
	err = r.store.exec(ctx,
		`INSERT INTO scan_records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             plate_type = excluded.plate_type,
             barcodes_json = excluded.barcodes_json,
             image_path = excluded.image_path,
             num_slots = excluded.num_slots,
             num_valid = excluded.num_valid,
             scanned_at = excluded.scanned_at`,
		record.ID,
		record.PlateType,
		string(barcodes),
		nullableString(record.ImagePath),
		record.NumSlots,
		record.NumValid,
		record.ScannedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert scan record: %w", err)
	}
	return nil
}

func (r *SQLiteRecordRepository) Get(ctx context.Context, id string) (*entity.ScanRecord, error) {
	row := r.store.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM scan_records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get scan record: %w", err)
	}
	return record, nil
}

func (r *SQLiteRecordRepository) List(ctx context.Context, limit int) ([]*entity.ScanRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM scan_records ORDER BY scanned_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scan records: %w", err)
	}
	defer rows.Close()

	var out []*entity.ScanRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*entity.ScanRecord, error) {
	var (
		record    entity.ScanRecord
		barcodes  string
		imagePath sql.NullString
		scannedAt string
	)
	if err := row.Scan(&record.ID, &record.PlateType, &barcodes, &imagePath,
		&record.NumSlots, &record.NumValid, &scannedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(barcodes), &record.Barcodes); err != nil {
		return nil, fmt.Errorf("decode barcodes: %w", err)
	}
	record.ImagePath = imagePath.String
	t, err := time.Parse(time.RFC3339Nano, scannedAt)
	if err != nil {
		return nil, fmt.Errorf("parse scanned_at: %w", err)
	}
	record.ScannedAt = t
	return &record, nil
}

// SQLiteOperatorRepository операторы бота в SQLite
type SQLiteOperatorRepository struct {
	store *SQLiteStore
}

// Operators возвращает хранилище операторов
func (s *SQLiteStore) Operators() *SQLiteOperatorRepository {
	return &SQLiteOperatorRepository{store: s}
}

func (r *SQLiteOperatorRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	var (
		operator entity.Operator
		state    string
	)
	err := r.store.db.QueryRowContext(ctx,
		`SELECT user_id, chat_id, state FROM operators WHERE user_id = ?`, userID,
	).Scan(&operator.ID, &operator.ChatID, &state)
	if errors.Is(err, sql.ErrNoRows) {
		created := entity.NewOperator(userID, chatID)
		if err := r.Save(ctx, created); err != nil {
			return nil, err
		}
		return created, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get operator: %w", err)
	}
	operator.State = entity.OperatorState(state)
	return &operator, nil
}

func (r *SQLiteOperatorRepository) Save(ctx context.Context, operator *entity.Operator) error {
	err := r.store.exec(ctx,
		`INSERT INTO operators (user_id, chat_id, state) VALUES (?, ?, ?)
         ON CONFLICT(user_id) DO UPDATE SET chat_id = excluded.chat_id, state = excluded.state`,
		operator.ID, operator.ChatID, string(operator.State))
	if err != nil {
		return fmt.Errorf("save operator: %w", err)
	}
	return nil
}

func (r *SQLiteOperatorRepository) ListSubscribed(ctx context.Context) ([]*entity.Operator, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT user_id, chat_id, state FROM operators WHERE state = ? ORDER BY user_id`,
		string(entity.OperatorSubscribed))
	if err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	defer rows.Close()

	var out []*entity.Operator
	for rows.Next() {
		var (
			operator entity.Operator
			state    string
		)
		if err := rows.Scan(&operator.ID, &operator.ChatID, &state); err != nil {
			return nil, fmt.Errorf("scan operator row: %w", err)
		}
		operator.State = entity.OperatorState(state)
		out = append(out, &operator)
	}
	return out, rows.Err()
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

var (
	_ port.RecordRepository   = (*SQLiteRecordRepository)(nil)
	_ port.OperatorRepository = (*SQLiteOperatorRepository)(nil)
)
