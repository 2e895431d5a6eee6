package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"beautystudio/internal/infrastructure/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := initLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	defer InitLogger(config.DefaultLogConfig())

	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	WithField("session", "c-1").Info("生成開始")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "生成開始", entry["msg"])
	assert.Equal(t, "c-1", entry["session"])
	assert.Contains(t, entry["file"], "logger_test.go:")
}

func TestInitLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := initLogger(config.LogConfig{Level: "verbose", Format: "text"}, &buf)
	defer InitLogger(config.DefaultLogConfig())

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	Debugf("表示されない")
	assert.Empty(t, buf.String())

	Warnf("警告: %d", 1)
	assert.Contains(t, buf.String(), "警告: 1")
}

func TestWrappers_ReportCallSite(t *testing.T) {
	var buf bytes.Buffer
	initLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	defer InitLogger(config.DefaultLogConfig())

	logs := map[string]func(){
		"Infof":     func() { Infof("hello %s", "world") },
		"Errorf":    func() { Errorf("failed") },
		"WithError": func() { WithError(errors.New("boom")).Warn("警告") },
	}
	for name, log := range logs {
		t.Run(name, func(t *testing.T) {
			buf.Reset()
			log()

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			file, _ := entry["file"].(string)
			assert.True(t, strings.HasPrefix(file, "logger_test.go:"), "呼び出し元が記録されるべき: %s", file)
			assert.NotContains(t, file, "logger.go:")
		})
	}

	t.Run("テキスト形式", func(t *testing.T) {
		initLogger(config.LogConfig{Level: "info", Format: "text"}, &buf)
		buf.Reset()

		Infof("text")
		assert.Contains(t, buf.String(), `file="logger_test.go:`)
		assert.NotContains(t, buf.String(), "logger.go:")
	})
}
