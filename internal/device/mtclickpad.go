package device

import (
	"github.com/char5742/evsim/internal/consts"
	"github.com/char5742/evsim/internal/types"
)

const mtClickpadRule = `ACTION=="remove", GOTO="clickpad_end"
KERNEL!="event*", GOTO="clickpad_end"
ENV{ID_INPUT_TOUCHPAD}=="", GOTO="clickpad_end"

ATTRS{name}=="evsim mt clickpad", ENV{LIBINPUT_MODEL_TEST_CLICKPAD}="1"

LABEL="clickpad_end"`

// MtClickpad はマルチタッチ対応クリックパッドの定義を返す
// トラッキングIDはタッチごとに増加するため、AxisDefaultフックは状態を持つ
func MtClickpad() *Descriptor {
	d := &Descriptor{
		Kind:      KindMtClickpad,
		Features:  FeatureTouchpad | FeatureClickpad | FeatureButton,
		Name:      "evsim mt clickpad",
		ShortName: "mtclickpad",
		ID: types.InputID{
			Bustype: consts.BusI8042,
			Vendor:  0x0002,
			Product: 0x0007,
		},
		Events: []EventCode{
			{Type: consts.Key, Code: consts.BtnLeft},
			{Type: consts.Key, Code: consts.BtnToolFinger},
			{Type: consts.Key, Code: consts.BtnTouch},
			{Type: consts.Key, Code: consts.BtnToolDoubleTap},
			{Type: consts.Key, Code: consts.BtnToolTripleTap},
			{Type: consts.Key, Code: consts.BtnToolQuadTap},
		},
		Axes: []AbsAxis{
			{Code: consts.AbsX, Min: 1472, Max: 5472, Resolution: 75},
			{Code: consts.AbsY, Min: 1408, Max: 4448, Resolution: 129},
			{Code: consts.AbsPressure, Min: 0, Max: 255},
			{Code: consts.AbsMtSlot, Min: 0, Max: 4},
			{Code: consts.AbsMtPositionX, Min: 1472, Max: 5472, Resolution: 75},
			{Code: consts.AbsMtPositionY, Min: 1408, Max: 4448, Resolution: 129},
			{Code: consts.AbsMtTrackingId, Min: 0, Max: 65535},
			{Code: consts.AbsMtPressure, Min: 0, Max: 255},
		},
		UdevRule: mtClickpadRule,
		TouchDown: []Template{
			{Type: consts.Abs, Code: consts.AbsMtSlot, Auto: true},
			{Type: consts.Abs, Code: consts.AbsMtTrackingId, Auto: true},
			{Type: consts.Abs, Code: consts.AbsMtPositionX, Auto: true},
			{Type: consts.Abs, Code: consts.AbsMtPositionY, Auto: true},
			{Type: consts.Abs, Code: consts.AbsMtPressure, Auto: true},
			{Type: consts.Abs, Code: consts.AbsX, Auto: true},
			{Type: consts.Abs, Code: consts.AbsY, Auto: true},
			{Type: consts.Abs, Code: consts.AbsPressure, Auto: true},
			{Type: consts.Key, Code: consts.BtnTouch, Value: 1},
			{Type: consts.Key, Code: consts.BtnToolFinger, Value: 1},
			{Type: consts.Syn, Code: consts.SynReport, Value: 0},
		},
		TouchMove: []Template{
			{Type: consts.Abs, Code: consts.AbsMtSlot, Auto: true},
			{Type: consts.Abs, Code: consts.AbsMtPositionX, Auto: true},
			{Type: consts.Abs, Code: consts.AbsMtPositionY, Auto: true},
			{Type: consts.Abs, Code: consts.AbsMtPressure, Auto: true},
			{Type: consts.Abs, Code: consts.AbsX, Auto: true},
			{Type: consts.Abs, Code: consts.AbsY, Auto: true},
			{Type: consts.Abs, Code: consts.AbsPressure, Auto: true},
			{Type: consts.Syn, Code: consts.SynReport, Value: 0},
		},
	}
	var nextTrackingID int32
	d.AxisDefault = func(_ *Descriptor, code uint16) (int32, bool) {
		if code == consts.AbsMtTrackingId {
			id := nextTrackingID
			nextTrackingID++
			return id, true
		}
		return 0, false
	}
	d.Setup = func(r *Registry, d *Descriptor) error {
		r.SetCurrent(d)
		return nil
	}
	return d
}
