package device

import (
	"github.com/char5742/evsim/internal/consts"
	"github.com/char5742/evsim/internal/types"
)

const mouseRule = `ACTION=="remove", GOTO="mouse_end"
KERNEL!="event*", GOTO="mouse_end"
ENV{ID_INPUT_MOUSE}=="", GOTO="mouse_end"

ATTRS{name}=="evsim mouse", ENV{LIBINPUT_MODEL_TEST_MOUSE}="1"

LABEL="mouse_end"`

// Mouse は相対座標のみの汎用マウスの定義を返す
// 絶対座標軸を持たないため、タッチテンプレートは空となる
func Mouse() *Descriptor {
	d := &Descriptor{
		Kind:      KindMouse,
		Features:  FeatureMouse | FeatureButton,
		Name:      "evsim mouse",
		ShortName: "mouse",
		ID: types.InputID{
			Bustype: consts.BusUsb,
			Vendor:  0x17ef,
			Product: 0x6019,
		},
		Events: []EventCode{
			{Type: consts.Rel, Code: consts.RelX},
			{Type: consts.Rel, Code: consts.RelY},
			{Type: consts.Rel, Code: consts.RelWheel},
			{Type: consts.Key, Code: consts.BtnLeft},
			{Type: consts.Key, Code: consts.BtnRight},
			{Type: consts.Key, Code: consts.BtnMiddle},
		},
		UdevRule: mouseRule,
	}
	d.Setup = func(r *Registry, d *Descriptor) error {
		r.SetCurrent(d)
		return nil
	}
	return d
}
