package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked каталог уже занят другим процессом сканера
var ErrLocked = errors.New("store directory is locked by another scanner")

// DirLock блокировка каталога хранилища на время сканирования
type DirLock struct {
	path string
	lock *flock.Flock
}

// LockDir захватывает блокировку каталога без ожидания
func LockDir(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	path := filepath.Join(dir, "puckscan.lock")
	l := &DirLock{path: path, lock: flock.New(path)}

	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return l, nil
}

// Path возвращает путь к файлу блокировки
func (l *DirLock) Path() string {
	return l.path
}

// Unlock освобождает блокировку
func (l *DirLock) Unlock() error {
	return l.lock.Unlock()
}
