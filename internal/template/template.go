// Package template は抽象的なジェスチャーテンプレートを
// 具体的なカーネルイベント列に展開するエンジンを提供する
package template

import (
	"errors"
	"fmt"

	"github.com/char5742/evsim/internal/consts"
	"github.com/char5742/evsim/internal/device"
	"github.com/char5742/evsim/internal/types"
)

// ErrUnresolvedAxis は自動決定値を解決できなかったことを表す
var ErrUnresolvedAxis = errors.New("軸の既定値を解決できません")

// マルチタッチ軸から対応する非MT軸へのフォールバック
var mtAlias = map[uint16]uint16{
	consts.AbsMtPositionX: consts.AbsX,
	consts.AbsMtPositionY: consts.AbsY,
	consts.AbsMtPressure:  consts.AbsPressure,
}

// Expand はテンプレート列を具体的なイベント列に展開する
// フィールドの順序はテンプレートのまま保持される
func Expand(d *device.Descriptor, tmpl []device.Template) ([]types.Event, error) {
	events := make([]types.Event, 0, len(tmpl))
	for i, t := range tmpl {
		value := t.Value
		if t.Auto {
			v, err := ResolveDefault(d, t.Code)
			if err != nil {
				return nil, fmt.Errorf("テンプレート %d番目の展開に失敗しました: %w", i, err)
			}
			value = v
		}
		events = append(events, types.Event{
			Type:  t.Type,
			Code:  t.Code,
			Value: value,
		})
	}
	return events, nil
}

// ResolveDefault は自動決定フィールドの具体値を解決する
// デバイス定義のAxisDefaultフックを優先し、なければ汎用ポリシーを適用する
func ResolveDefault(d *device.Descriptor, code uint16) (int32, error) {
	if d.AxisDefault != nil {
		if v, ok := d.AxisDefault(d, code); ok {
			return v, nil
		}
	}

	axis, ok := d.Axis(code)
	if !ok {
		// MT軸は対応する非MT軸の範囲にフォールバックする
		if alias, aliased := mtAlias[code]; aliased {
			axis, ok = d.Axis(alias)
		}
		if !ok {
			return 0, fmt.Errorf("%w: code=0x%x", ErrUnresolvedAxis, code)
		}
	}

	switch code {
	case consts.AbsPressure, consts.AbsMtPressure:
		// 圧力系の軸は「軽い接触」として最小値寄りの値を返す
		return axis.Min + (axis.Max-axis.Min)/10, nil
	case consts.AbsMtSlot:
		return axis.Min, nil
	default:
		// 位置系の軸を含め、範囲の中央値を既定とする
		return (axis.Min + axis.Max) / 2, nil
	}
}
