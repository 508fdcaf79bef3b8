package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const touchpadRule = `ACTION=="remove", GOTO="touchpad_end"
KERNEL!="event*", GOTO="touchpad_end"
ENV{ID_INPUT_TOUCHPAD}=="", GOTO="touchpad_end"

ATTRS{name}=="test touchpad", ENV{LIBINPUT_MODEL_TEST}="1"

LABEL="touchpad_end"`

func TestApplyMatchingDevice(t *testing.T) {
	rs, err := Parse(touchpadRule)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := rs.Apply(Env{
		"ACTION":                 "add",
		"KERNEL":                 "event3",
		"ATTRS{name}":            "test touchpad",
		"ENV{ID_INPUT_TOUCHPAD}": "1",
	})
	want := map[string]string{"ENV{LIBINPUT_MODEL_TEST}": "1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("導出プロパティが一致しません (-want +got):\n%s", diff)
	}
}

func TestApplyRemoveActionSkips(t *testing.T) {
	rs, err := Parse(touchpadRule)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := rs.Apply(Env{
		"ACTION":                 "remove",
		"KERNEL":                 "event3",
		"ATTRS{name}":            "test touchpad",
		"ENV{ID_INPUT_TOUCHPAD}": "1",
	})
	if len(got) != 0 {
		t.Errorf("removeアクションでプロパティが導出されました: %v", got)
	}
}

func TestApplyKernelGlob(t *testing.T) {
	rs, err := Parse(touchpadRule)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// event*に一致しないカーネル名はGOTOで末尾へ飛ぶ
	got := rs.Apply(Env{
		"ACTION":                 "add",
		"KERNEL":                 "mouse0",
		"ATTRS{name}":            "test touchpad",
		"ENV{ID_INPUT_TOUCHPAD}": "1",
	})
	if len(got) != 0 {
		t.Errorf("カーネル名不一致でプロパティが導出されました: %v", got)
	}
}

func TestApplyTouchpadPropertyGuard(t *testing.T) {
	rs, err := Parse(touchpadRule)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// ==""は「未設定または空」に一致する
	tests := []struct {
		name string
		env  Env
		want int
	}{
		{
			name: "プロパティ未設定",
			env: Env{
				"ACTION":      "add",
				"KERNEL":      "event0",
				"ATTRS{name}": "test touchpad",
			},
			want: 0,
		},
		{
			name: "プロパティが空",
			env: Env{
				"ACTION":                 "add",
				"KERNEL":                 "event0",
				"ATTRS{name}":            "test touchpad",
				"ENV{ID_INPUT_TOUCHPAD}": "",
			},
			want: 0,
		},
		{
			name: "プロパティあり",
			env: Env{
				"ACTION":                 "add",
				"KERNEL":                 "event0",
				"ATTRS{name}":            "test touchpad",
				"ENV{ID_INPUT_TOUCHPAD}": "1",
			},
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rs.Apply(tt.env)
			if len(got) != tt.want {
				t.Errorf("導出プロパティ数 = %d, want %d (%v)", len(got), tt.want, got)
			}
		})
	}
}

func TestApplyDoesNotMutateEnv(t *testing.T) {
	rs, err := Parse(`KERNEL=="event*", ENV{X}="1"`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	env := Env{"KERNEL": "event0"}
	rs.Apply(env)
	if diff := cmp.Diff(Env{"KERNEL": "event0"}, env); diff != "" {
		t.Errorf("Applyが呼び出し元の環境を変更しました (-want +got):\n%s", diff)
	}
}

func TestApplyAssignmentVisibleToLaterClauses(t *testing.T) {
	rule := `KERNEL=="event*", ENV{STAGE}="one"
ENV{STAGE}=="one", ENV{RESULT}="ok"`
	rs, err := Parse(rule)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := rs.Apply(Env{"KERNEL": "event0"})
	want := map[string]string{
		"ENV{STAGE}":  "one",
		"ENV{RESULT}": "ok",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("後続節から設定値が見えていません (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		rule string
	}{
		{"演算子なし", `KERNEL "event*"`},
		{"引用符なし", `KERNEL==event*`},
		{"未定義ラベル", `ACTION=="remove", GOTO="nowhere"`},
		{"ラベル重複", "LABEL=\"end\"\nLABEL=\"end\""},
		{"不正なグロブ", `KERNEL=="[event"`},
		{"後方ジャンプ", "LABEL=\"top\"\nGOTO=\"top\""},
		{"自分自身へのジャンプ", `LABEL="here", GOTO="here"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.rule); !errors.Is(err, ErrRuleParse) {
				t.Errorf("Parse(%q) = %v, ErrRuleParseを期待", tt.rule, err)
			}
		})
	}
}

func TestApplyForwardGotoTerminates(t *testing.T) {
	// 前方ジャンプのみ許されるため、評価は必ず末尾に到達する
	rule := `ACTION=="add", GOTO="skip"
ENV{UNREACHED}="1"
LABEL="skip"
ENV{OK}="1"`
	rs, err := Parse(rule)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	done := make(chan map[string]string, 1)
	go func() {
		done <- rs.Apply(Env{"ACTION": "add"})
	}()

	select {
	case got := <-done:
		want := map[string]string{"ENV{OK}": "1"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("導出プロパティが一致しません (-want +got):\n%s", diff)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Applyが終了しませんでした")
	}
}

func TestParseOperatorInsideQuotes(t *testing.T) {
	// 引用符の中の==や=は演算子として扱わない
	rs, err := Parse(`ENV{EXPR}="a==b"`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := rs.Apply(Env{})
	if got["ENV{EXPR}"] != "a==b" {
		t.Errorf("値の中の演算子が壊れました: %v", got)
	}

	rs, err = Parse(`ENV{NAME}=="key=value", ENV{OK}="1"`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := rs.Apply(Env{"ENV{NAME}": "key=value"}); got["ENV{OK}"] != "1" {
		t.Errorf("=を含むパターンが一致しませんでした: %v", got)
	}
}

func TestParseIgnoresCommentsAndBlanks(t *testing.T) {
	rule := `# 分類ルール

KERNEL=="event*", ENV{OK}="1"
`
	rs, err := Parse(rule)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := rs.Apply(Env{"KERNEL": "event1"})
	if got["ENV{OK}"] != "1" {
		t.Errorf("コメント混じりのルールが適用されませんでした: %v", got)
	}
}

func TestApplyNoMatchStrictNegation(t *testing.T) {
	rs, err := Parse(`ENV{TAG}!="skip", ENV{OK}="1"`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := rs.Apply(Env{"ENV{TAG}": "skip"}); len(got) != 0 {
		t.Errorf("!=が一致する値で成立しました: %v", got)
	}
	if got := rs.Apply(Env{"ENV{TAG}": "keep"}); got["ENV{OK}"] != "1" {
		t.Errorf("!=が不一致の値で不成立になりました: %v", got)
	}
	if got := rs.Apply(Env{}); got["ENV{OK}"] != "1" {
		t.Errorf("!=が未設定キーで不成立になりました: %v", got)
	}
}
