package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

var ErrInvalidKey = errors.New("invalid storage key")

// FileStorage 每個 key 存成 dir 底下的一個檔案，寫入時先寫暫存檔再 rename
type FileStorage struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

func NewFileStorage(fs afero.Fs, dir string) (*FileStorage, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &FileStorage{fs: fs, dir: dir}, nil
}

var _ Storage = (*FileStorage)(nil)

func (f *FileStorage) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileStorage) Get(ctx context.Context, key string) (string, error) {
	p, err := f.path(key)
	if err != nil {
		return "", err
	}
	b, err := afero.ReadFile(f.fs, p)
	if errors.Is(err, os.ErrNotExist) {
		return "", notFound(key)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(b), nil
}

func (f *FileStorage) Set(ctx context.Context, key string, value string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp := fmt.Sprintf("%s.%s.tmp", p, uuid.NewString())
	if err := afero.WriteFile(f.fs, tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.fs.Rename(tmp, p); err != nil {
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (f *FileStorage) Delete(ctx context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (f *FileStorage) Close() error {
	return nil
}
