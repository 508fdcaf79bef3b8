package device

import (
	"github.com/char5742/evsim/internal/consts"
	"github.com/char5742/evsim/internal/types"
)

const appletouchRule = `ACTION=="remove", GOTO="touchpad_end"
KERNEL!="event*", GOTO="touchpad_end"
ENV{ID_INPUT_TOUCHPAD}=="", GOTO="touchpad_end"

ATTRS{name}=="evsim appletouch", ENV{LIBINPUT_MODEL_APPLE_TOUCHPAD_ONEBUTTON}="1"

LABEL="touchpad_end"`

// Appletouch はApple appletouchタッチパッドの定義を返す
// シングルタッチかつ圧力センサーの初期値が高めに出る実機の挙動を再現する
func Appletouch() *Descriptor {
	d := &Descriptor{
		Kind:      KindAppletouch,
		Features:  FeatureTouchpad | FeatureButton | FeatureSingleTouch,
		Name:      "evsim appletouch",
		ShortName: "appletouch",
		ID: types.InputID{
			Bustype: consts.BusUsb,
			Vendor:  0x5ac,
			Product: 0x21a,
		},
		Events: []EventCode{
			{Type: consts.Key, Code: consts.BtnLeft},
			{Type: consts.Key, Code: consts.BtnToolFinger},
			{Type: consts.Key, Code: consts.BtnTouch},
			{Type: consts.Key, Code: consts.BtnToolDoubleTap},
			{Type: consts.Key, Code: consts.BtnToolTripleTap},
		},
		Axes: []AbsAxis{
			{Code: consts.AbsX, Min: 0, Max: 1215},
			{Code: consts.AbsY, Min: 0, Max: 588},
			{Code: consts.AbsPressure, Min: 0, Max: 300},
		},
		UdevRule: appletouchRule,
		TouchDown: []Template{
			{Type: consts.Abs, Code: consts.AbsX, Auto: true},
			{Type: consts.Abs, Code: consts.AbsY, Auto: true},
			{Type: consts.Abs, Code: consts.AbsPressure, Auto: true},
			{Type: consts.Syn, Code: consts.SynReport, Value: 0},
		},
		TouchMove: []Template{
			{Type: consts.Abs, Code: consts.AbsX, Auto: true},
			{Type: consts.Abs, Code: consts.AbsY, Auto: true},
			{Type: consts.Abs, Code: consts.AbsPressure, Auto: true},
			{Type: consts.Syn, Code: consts.SynReport, Value: 0},
		},
	}
	d.AxisDefault = func(_ *Descriptor, code uint16) (int32, bool) {
		switch code {
		case consts.AbsPressure, consts.AbsMtPressure:
			// このセンサーは軽い接触でも高い圧力値を報告する
			return 70, true
		}
		return 0, false
	}
	d.Setup = func(r *Registry, d *Descriptor) error {
		r.SetCurrent(d)
		return nil
	}
	return d
}
