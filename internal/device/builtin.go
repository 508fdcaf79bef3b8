package device

import "fmt"

// Builtin は組み込みデバイス定義をすべて登録したレジストリを返す
// 定義はフックの状態を含めて呼び出しごとに新しく作られる
func Builtin() (*Registry, error) {
	r := NewRegistry()
	for _, d := range []*Descriptor{
		Appletouch(),
		MtClickpad(),
		Mouse(),
		Keyboard(),
	} {
		if err := r.Register(d); err != nil {
			return nil, fmt.Errorf("組み込みデバイスの登録に失敗しました: %w", err)
		}
	}
	return r, nil
}
