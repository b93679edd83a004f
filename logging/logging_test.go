package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/DarkerMinecraft/Gravix/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		cfg   config.Log
		level zapcore.Level
		ok    bool
	}{
		{config.Log{Level: "debug", Format: "console"}, zapcore.DebugLevel, true},
		{config.Log{Level: "warn", Format: "json"}, zapcore.WarnLevel, true},
		{config.Log{}, zapcore.InfoLevel, true},
		{config.Log{Level: "loud"}, 0, false},
		{config.Log{Format: "xml"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.cfg.Level+"/"+tt.cfg.Format, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if !tt.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !logger.Core().Enabled(tt.level) {
				t.Errorf("level %s disabled", tt.level)
			}
			if tt.level > zapcore.DebugLevel && logger.Core().Enabled(tt.level-1) {
				t.Errorf("level below %s enabled", tt.level)
			}
		})
	}
}

func TestNewTest(t *testing.T) {
	logger := NewTest(t)
	logger.Debug("visible in -v output")
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug disabled")
	}
	if Nop().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("nop logger enabled")
	}
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWriter(config.Log{Level: "warn"}, &buf)
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry written: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "gravix") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colored output: %q", out)
	}

	buf.Reset()
	logger, err = NewWriter(config.Log{Format: "json"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("structured")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json output = %q", buf.String())
	}

	if _, err := NewWriter(config.Log{Format: "xml"}, &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}
