package features

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/char5742/evsim/internal/device"
	"github.com/char5742/evsim/internal/rules"
)

// BuildEnv はデバイス定義からudev形式のプロパティ環境を構築する
// kernelはデバイスノードのカーネル名（event3など）、extraは追加のENVプロパティ
func BuildEnv(desc *device.Descriptor, kernel string, extra map[string]string) rules.Env {
	env := rules.Env{
		"ACTION":      "add",
		"KERNEL":      kernel,
		"ATTRS{name}": desc.Name,
	}
	if desc.HasFeature(device.FeatureTouchpad) {
		env["ENV{ID_INPUT_TOUCHPAD}"] = "1"
	}
	if desc.HasFeature(device.FeatureMouse) {
		env["ENV{ID_INPUT_MOUSE}"] = "1"
	}
	if desc.HasFeature(device.FeatureKeyboard) {
		env["ENV{ID_INPUT_KEYBOARD}"] = "1"
	}
	for key, value := range extra {
		env["ENV{"+key+"}"] = value
	}
	return env
}

// Classify はデバイス定義の分類ルールを環境に適用し、導出されたプロパティを返す
// ENV{NAME}="値" の設定はNAMEをキーとして返される
func Classify(desc *device.Descriptor, env rules.Env) (map[string]string, error) {
	rs, err := rules.Parse(desc.UdevRule)
	if err != nil {
		return nil, fmt.Errorf("デバイス %v の分類ルールが不正です: %w", desc.Kind, err)
	}

	derived := make(map[string]string)
	for key, value := range rs.Apply(env) {
		if name, ok := strings.CutPrefix(key, "ENV{"); ok && strings.HasSuffix(name, "}") {
			key = strings.TrimSuffix(name, "}")
		}
		derived[key] = value
	}
	return derived, nil
}

// Classify は作成済みデバイスのノード名を使って分類を実行する
func (vd *Device) Classify(extra map[string]string) (map[string]string, error) {
	env := BuildEnv(vd.desc, filepath.Base(vd.node), extra)
	return Classify(vd.desc, env)
}
