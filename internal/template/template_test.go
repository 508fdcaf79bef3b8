package template

import (
	"errors"
	"testing"

	"github.com/char5742/evsim/internal/consts"
	"github.com/char5742/evsim/internal/device"
	"github.com/char5742/evsim/internal/types"
	"github.com/google/go-cmp/cmp"
)

func TestExpandAppletouchTouchDown(t *testing.T) {
	d := device.Appletouch()

	got, err := Expand(d, d.TouchDown)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	// X/Yは範囲の中央値、圧力はフックの定めた70となる
	want := []types.Event{
		{Type: consts.Abs, Code: consts.AbsX, Value: 607},
		{Type: consts.Abs, Code: consts.AbsY, Value: 294},
		{Type: consts.Abs, Code: consts.AbsPressure, Value: 70},
		{Type: consts.Syn, Code: consts.SynReport, Value: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("展開結果が一致しません (-want +got):\n%s", diff)
	}
}

func TestExpandDeterministic(t *testing.T) {
	d := device.Appletouch()

	first, err := Expand(d, d.TouchDown)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	second, err := Expand(d, d.TouchDown)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("同一テンプレートの展開結果が異なります (-first +second):\n%s", diff)
	}
}

func TestExpandPreservesOrder(t *testing.T) {
	d := device.Appletouch()
	tmpl := []device.Template{
		{Type: consts.Abs, Code: consts.AbsPressure, Value: 5},
		{Type: consts.Abs, Code: consts.AbsY, Auto: true},
		{Type: consts.Abs, Code: consts.AbsX, Auto: true},
		{Type: consts.Syn, Code: consts.SynReport},
	}

	got, err := Expand(d, tmpl)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []types.Event{
		{Type: consts.Abs, Code: consts.AbsPressure, Value: 5},
		{Type: consts.Abs, Code: consts.AbsY, Value: 294},
		{Type: consts.Abs, Code: consts.AbsX, Value: 607},
		{Type: consts.Syn, Code: consts.SynReport, Value: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("フィールド順が保持されていません (-want +got):\n%s", diff)
	}
}

func TestExpandUnresolvedAxis(t *testing.T) {
	d := device.Mouse() // 絶対座標軸を持たないデバイス
	tmpl := []device.Template{
		{Type: consts.Abs, Code: consts.AbsX, Auto: true},
	}

	if _, err := Expand(d, tmpl); !errors.Is(err, ErrUnresolvedAxis) {
		t.Errorf("軸なしデバイスの展開が %v を返しました。ErrUnresolvedAxisを期待", err)
	}
}

func TestResolveDefaultGenericPolicy(t *testing.T) {
	d := &device.Descriptor{
		Kind:      device.KindMtClickpad,
		ShortName: "pad",
		Axes: []device.AbsAxis{
			{Code: consts.AbsX, Min: 100, Max: 200},
			{Code: consts.AbsPressure, Min: 0, Max: 300},
			{Code: consts.AbsMtSlot, Min: 0, Max: 4},
		},
	}

	tests := []struct {
		name string
		code uint16
		want int32
	}{
		{"位置軸は中央値", consts.AbsX, 150},
		{"圧力軸は最小値寄り", consts.AbsPressure, 30},
		{"スロットは最小値", consts.AbsMtSlot, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDefault(d, tt.code)
			if err != nil {
				t.Fatalf("ResolveDefault: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveDefault(0x%x) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestResolveDefaultPressureWithinRange(t *testing.T) {
	d := &device.Descriptor{
		Kind:      device.KindAppletouch,
		ShortName: "p",
		Axes:      []device.AbsAxis{{Code: consts.AbsPressure, Min: 0, Max: 300}},
	}
	got, err := ResolveDefault(d, consts.AbsPressure)
	if err != nil {
		t.Fatalf("ResolveDefault: %v", err)
	}
	if got <= 0 || got > 300 {
		t.Errorf("圧力の既定値 %d が範囲 (0, 300] を外れています", got)
	}
}

func TestResolveDefaultHookOverride(t *testing.T) {
	d := device.Appletouch()
	got, err := ResolveDefault(d, consts.AbsPressure)
	if err != nil {
		t.Fatalf("ResolveDefault: %v", err)
	}
	if got != 70 {
		t.Errorf("フックによる圧力値が %d になりました。70を期待", got)
	}
}

func TestResolveDefaultMtAlias(t *testing.T) {
	// MT軸の定義を持たないデバイスでは対応する非MT軸の範囲を使う
	d := &device.Descriptor{
		Kind:      device.KindAppletouch,
		ShortName: "st",
		Axes: []device.AbsAxis{
			{Code: consts.AbsX, Min: 0, Max: 1000},
			{Code: consts.AbsPressure, Min: 0, Max: 100},
		},
	}

	got, err := ResolveDefault(d, consts.AbsMtPositionX)
	if err != nil {
		t.Fatalf("ResolveDefault(ABS_MT_POSITION_X): %v", err)
	}
	if got != 500 {
		t.Errorf("MT位置軸のフォールバックが %d になりました。500を期待", got)
	}

	got, err = ResolveDefault(d, consts.AbsMtPressure)
	if err != nil {
		t.Fatalf("ResolveDefault(ABS_MT_PRESSURE): %v", err)
	}
	if got != 10 {
		t.Errorf("MT圧力軸のフォールバックが %d になりました。10を期待", got)
	}
}

func TestResolveDefaultTrackingIDIncrements(t *testing.T) {
	d := device.MtClickpad()

	first, err := ResolveDefault(d, consts.AbsMtTrackingId)
	if err != nil {
		t.Fatalf("ResolveDefault: %v", err)
	}
	second, err := ResolveDefault(d, consts.AbsMtTrackingId)
	if err != nil {
		t.Fatalf("ResolveDefault: %v", err)
	}
	if second != first+1 {
		t.Errorf("トラッキングIDが %d から %d になりました。連番を期待", first, second)
	}
}
