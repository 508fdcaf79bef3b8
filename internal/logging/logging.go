// Package logging はlipglossで彩色したslogハンドラを提供する
// systemdのジャーナル配下ではジャーナルへ直接送出する
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/coreos/go-systemd/v22/journal"
)

var bufPool sync.Pool

var (
	styleTime = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#222222", Dark: "#AAAAAA"})
	styleKey  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#222222", Dark: "#AAAAAA"})

	styleError = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AA0000", Dark: "#EE0000"})
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AAAA00", Dark: "#EEEE00"})
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#3333AA", Dark: "#5555EE"})
	styleDebug = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#00EE00"})
)

func styleLevel(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return styleError
	case level >= slog.LevelWarn:
		return styleWarn
	case level >= slog.LevelInfo:
		return styleInfo
	default:
		return styleDebug
	}
}

func toJournalPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// Handler はハーネス用のslog.Handler実装
type Handler struct {
	UseJournal bool
	Level      slog.Level
	Out        io.Writer // 未設定の場合はos.Stderr

	attrs []slog.Attr
	group string
}

func quoteIfNecessary(str string) string {
	for _, c := range str {
		if unicode.IsSpace(c) {
			return strconv.Quote(str)
		}
	}
	return str
}

// Enabled は指定レベルのログを出力するかどうかを返す
func (h Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.Level
}

// Handle は1レコードを整形して出力する
func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	attrs := slices.Grow(h.attrs, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	if h.group != "" {
		attrs = []slog.Attr{slog.Group(h.group, anyAttrs(attrs)...)}
	}

	if h.UseJournal {
		return h.handleJournal(r, attrs)
	}

	buf, _ := bufPool.Get().(*bytes.Buffer)
	if buf == nil {
		buf = new(bytes.Buffer)
	}
	defer func() {
		buf.Reset()
		bufPool.Put(buf)
	}()

	fmt.Fprintf(
		buf,
		"%v %v %v\n",
		styleTime.Render(r.Time.Format(time.StampMilli)),
		styleLevel(r.Level).Render(r.Level.String()),
		r.Message,
	)
	for _, attr := range attrs {
		fmt.Fprintf(
			buf,
			"\t%v=%v\n",
			styleKey.Render(quoteIfNecessary(attr.Key)),
			quoteIfNecessary(attr.Value.String()),
		)
	}

	out := h.Out
	if out == nil {
		out = os.Stderr
	}
	_, err := io.Copy(out, buf)
	return err
}

func (h Handler) handleJournal(r slog.Record, attrs []slog.Attr) error {
	vars := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		vars[attr.Key] = attr.Value.String()
	}

	return journal.Send(r.Message, toJournalPriority(r.Level), vars)
}

// WithAttrs は属性を追加したハンドラを返す
func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.attrs = slices.Clip(append(h.attrs, attrs...))
	return h
}

// WithGroup はグループ名を設定したハンドラを返す
func (h Handler) WithGroup(name string) slog.Handler {
	h.group = name
	return h
}

func anyAttrs(attrs []slog.Attr) []any {
	out := make([]any, len(attrs))
	for i, a := range attrs {
		out[i] = a
	}
	return out
}

// ParseLevel は設定文字列をslogのレベルに変換する
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup はデフォルトロガーをハーネス用ハンドラに差し替える
func Setup(level string, useJournal bool) {
	slog.SetDefault(slog.New(Handler{
		Level:      ParseLevel(level),
		UseJournal: useJournal,
	}))
}
