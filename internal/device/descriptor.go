package device

import (
	"errors"
	"fmt"

	"github.com/char5742/evsim/internal/types"
)

// Kind はシミュレートするデバイス種別を表す列挙型
type Kind int

const (
	KindAppletouch Kind = iota + 1 // Apple appletouch タッチパッド
	KindMtClickpad                 // マルチタッチ対応クリックパッド
	KindMouse                      // 汎用マウス
	KindKeyboard                   // 汎用キーボード
)

// String はデバイス種別の名前を返す
func (k Kind) String() string {
	switch k {
	case KindAppletouch:
		return "appletouch"
	case KindMtClickpad:
		return "mtclickpad"
	case KindMouse:
		return "mouse"
	case KindKeyboard:
		return "keyboard"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Feature はデバイスの持つ機能を表すビットセット
type Feature uint32

const (
	FeatureTouchpad    Feature = 1 << iota // タッチパッド
	FeatureButton                          // 物理ボタンを持つ
	FeatureSingleTouch                     // シングルタッチのみ
	FeatureClickpad                        // ボタン一体型パッド
	FeatureMouse                           // マウス
	FeatureKeyboard                        // キーボード
)

// Has は指定した機能をすべて持つかどうかを返す
func (f Feature) Has(other Feature) bool {
	return f&other == other
}

// EventCode はデバイスが報告する（イベントタイプ、コード）の組を表す
type EventCode struct {
	Type uint16 // イベントタイプ（EV_KEYなど）
	Code uint16 // イベントコード（BTN_LEFTなど）
}

// AbsAxis は絶対座標軸の定義を表す構造体
type AbsAxis struct {
	Code       uint16 // 軸コード（ABS_Xなど）
	Min        int32  // 最小値
	Max        int32  // 最大値
	Fuzz       int32  // ファジー値
	Flat       int32  // フラット値
	Resolution int32  // 解像度（単位/mm）
}

// Template は合成イベントの1フィールドを表す構造体
// Autoがtrueの場合、値は展開時にデバイス定義から自動決定される
type Template struct {
	Type  uint16 // イベントタイプ
	Code  uint16 // イベントコード
	Value int32  // リテラル値（Autoがfalseの場合に使用）
	Auto  bool   // 値を自動決定するかどうか
}

// Descriptor はシミュレートするデバイス1種の宣言的な定義を表す構造体
// Registryへの登録後は読み取り専用として扱う
type Descriptor struct {
	Kind      Kind          // デバイス種別（Registry内で一意）
	Features  Feature       // デバイスの機能
	Name      string        // 表示名（udevルールのATTRS{name}と一致させる）
	ShortName string        // 検索用の短縮名
	ID        types.InputID // バスタイプ・ベンダーID・製品ID

	Events []EventCode // 報告するイベントコードの列（登録順を保持）
	Axes   []AbsAxis   // 絶対座標軸の定義（軸コードごとに1つ）

	UdevRule string // 分類ルールのテキスト

	// Setup はデバイス固有の初期化を行うフック
	// 未設定の場合はレジストリのカレントデバイスに設定するだけの動作となる
	Setup func(r *Registry, d *Descriptor) error

	TouchDown []Template // タッチ開始のイベントテンプレート
	TouchMove []Template // タッチ移動のイベントテンプレート

	// AxisDefault は自動決定値の汎用ポリシーを上書きするフック
	// 見つかった場合は (値, true) を返す
	AxisDefault func(d *Descriptor, code uint16) (int32, bool)
}

// Axis は指定した軸コードの定義を返す
func (d *Descriptor) Axis(code uint16) (AbsAxis, bool) {
	for _, a := range d.Axes {
		if a.Code == code {
			return a, true
		}
	}
	return AbsAxis{}, false
}

// HasFeature は指定した機能をすべて持つかどうかを返す
func (d *Descriptor) HasFeature(f Feature) bool {
	return d.Features.Has(f)
}

// validate は定義の整合性を検証する
func (d *Descriptor) validate() error {
	if d.Kind == 0 {
		return errors.New("デバイス種別が未設定です")
	}
	if d.ShortName == "" {
		return fmt.Errorf("デバイス %v の短縮名が未設定です", d.Kind)
	}
	seen := make(map[uint16]bool, len(d.Axes))
	for _, a := range d.Axes {
		if seen[a.Code] {
			return fmt.Errorf("デバイス %v の軸 0x%x が重複しています", d.Kind, a.Code)
		}
		if a.Min > a.Max {
			return fmt.Errorf("デバイス %v の軸 0x%x の範囲が不正です (min=%d, max=%d)", d.Kind, a.Code, a.Min, a.Max)
		}
		seen[a.Code] = true
	}
	return nil
}
