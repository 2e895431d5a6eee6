package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"beautystudio/internal/infrastructure/config"

	"github.com/sirupsen/logrus"
)

var (
	mu     sync.RWMutex
	logger *logrus.Logger
)

// InitLogger は、設定に従ってグローバルロガーを初期化します
func InitLogger(cfg config.LogConfig) *logrus.Logger {
	return initLogger(cfg, os.Stdout)
}

func initLogger(cfg config.LogConfig, output io.Writer) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetFormatter(newFormatter(cfg.Format))
	l.SetOutput(output)

	mu.Lock()
	logger = l
	mu.Unlock()
	return l
}

// GetLogger は、グローバルロガーを返します。未初期化の場合はデフォルト設定で作成します
func GetLogger() *logrus.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}
	return InitLogger(config.DefaultLogConfig())
}

func newFormatter(format string) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
}

// callerEntry は、このパッケージの関数を呼んだ側の位置を "file" フィールド ("file.go:line") に持つエントリを返します。
// logrus の ReportCaller はラッパー自身を指してしまうため、位置はここで解決する
func callerEntry() *logrus.Entry {
	l := GetLogger()
	// 0: callerEntry, 1: 公開ラッパー, 2: 呼び出し元
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return logrus.NewEntry(l)
	}
	return l.WithField("file", fmt.Sprintf("%s:%d", filepath.Base(file), line))
}

func Debugf(format string, args ...interface{}) {
	callerEntry().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	callerEntry().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	callerEntry().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	callerEntry().Errorf(format, args...)
}

// WithField は、フィールド付きのエントリを返します
func WithField(key string, value interface{}) *logrus.Entry {
	return callerEntry().WithField(key, value)
}

// WithError は、エラー付きのエントリを返します
func WithError(err error) *logrus.Entry {
	return callerEntry().WithError(err)
}
