package device

import (
	"github.com/char5742/evsim/internal/consts"
	"github.com/char5742/evsim/internal/types"
)

const keyboardRule = `ACTION=="remove", GOTO="keyboard_end"
KERNEL!="event*", GOTO="keyboard_end"
ENV{ID_INPUT_KEYBOARD}=="", GOTO="keyboard_end"

ATTRS{name}=="evsim keyboard", ENV{LIBINPUT_MODEL_TEST_KEYBOARD}="1"

LABEL="keyboard_end"`

// Keyboard はキー入力のみの汎用キーボードの定義を返す
func Keyboard() *Descriptor {
	d := &Descriptor{
		Kind:      KindKeyboard,
		Features:  FeatureKeyboard,
		Name:      "evsim keyboard",
		ShortName: "keyboard",
		ID: types.InputID{
			Bustype: consts.BusI8042,
			Vendor:  0x0001,
			Product: 0x0001,
		},
		Events: []EventCode{
			{Type: consts.Key, Code: consts.KeyEsc},
			{Type: consts.Key, Code: consts.KeyEnter},
			{Type: consts.Key, Code: consts.KeyA},
			{Type: consts.Key, Code: consts.KeyS},
			{Type: consts.Key, Code: consts.KeyD},
			{Type: consts.Key, Code: consts.KeyF},
			{Type: consts.Key, Code: consts.KeyLeftShift},
			{Type: consts.Key, Code: consts.KeySpace},
		},
		UdevRule: keyboardRule,
	}
	d.Setup = func(r *Registry, d *Descriptor) error {
		r.SetCurrent(d)
		return nil
	}
	return d
}
