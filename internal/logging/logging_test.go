package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestHandlerEnabled(t *testing.T) {
	h := Handler{Level: slog.LevelWarn}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Errorf("Warnレベル設定でInfoが有効になっています")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Errorf("Warnレベル設定でErrorが無効になっています")
	}
}

func TestHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(Handler{Level: slog.LevelDebug, Out: &buf})

	logger.Info("デバイスを作成しました", "device", "appletouch", "node", "/dev/input/event3")

	out := buf.String()
	if !strings.Contains(out, "デバイスを作成しました") {
		t.Errorf("メッセージが出力に含まれません: %q", out)
	}
	if !strings.Contains(out, "appletouch") {
		t.Errorf("属性値が出力に含まれません: %q", out)
	}
	if !strings.Contains(out, "INFO") {
		t.Errorf("レベルが出力に含まれません: %q", out)
	}
}

func TestHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(Handler{Level: slog.LevelDebug, Out: &buf}).With("component", "rules")

	logger.Debug("ルールを解析しました")

	out := buf.String()
	if !strings.Contains(out, "component") || !strings.Contains(out, "rules") {
		t.Errorf("With付与の属性が出力に含まれません: %q", out)
	}
}

func TestHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(Handler{Level: slog.LevelDebug, Out: &buf}).WithGroup("uinput")

	logger.Info("作成", "path", "/dev/uinput")

	if !strings.Contains(buf.String(), "uinput") {
		t.Errorf("グループ名が出力に含まれません: %q", buf.String())
	}
}

func TestHandlerQuotesSpacedValues(t *testing.T) {
	var buf bytes.Buffer
	h := Handler{Level: slog.LevelDebug, Out: &buf}

	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "test", 0)
	rec.AddAttrs(slog.String("name", "evsim appletouch"))
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(buf.String(), `"evsim appletouch"`) {
		t.Errorf("空白を含む値が引用されていません: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
