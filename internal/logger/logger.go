package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const moduleName = "storefront"

type Options struct {
	Level  string
	Pretty bool
	// File 額外寫一份 JSON log 到檔案，空字串表示不寫
	File string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the process logger. The returned closer releases the log file, if any.
func New(stdout io.Writer, fs afero.Fs, opts Options) (zerolog.Logger, io.Closer, error) {
	if err := SetLevel(opts.Level); err != nil {
		return zerolog.Nop(), nil, err
	}

	var console io.Writer = stdout
	if opts.Pretty {
		console = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	w := console
	if opts.File != "" {
		f, err := fs.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file %s: %w", opts.File, err)
		}
		closer = f
		w = zerolog.MultiLevelWriter(console, f)
	}

	l := zerolog.New(w).With().
		Timestamp().
		Str("module", moduleName).
		Logger()
	return l, closer, nil
}

// SetLevel 調整全域 log 等級，設定檔重新載入時也會呼叫
func SetLevel(level string) error {
	if level == "" {
		level = zerolog.LevelInfoValue
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
