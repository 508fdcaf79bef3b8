package device

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateKind は同じデバイス種別が二重登録されたことを表す
	ErrDuplicateKind = errors.New("デバイス種別が重複しています")
	// ErrNotFound は未登録のデバイス種別が検索されたことを表す
	ErrNotFound = errors.New("デバイス定義が見つかりません")
)

// Registry は登録済みデバイス定義を保持する構造体
// 登録フェーズの完了後は読み取り専用となるため、参照にロックは不要
type Registry struct {
	byKind  map[Kind]*Descriptor
	byShort map[string]*Descriptor
	current *Descriptor
}

// NewRegistry は空のレジストリを作成する
func NewRegistry() *Registry {
	return &Registry{
		byKind:  make(map[Kind]*Descriptor),
		byShort: make(map[string]*Descriptor),
	}
}

// Register はデバイス定義を登録する
// 同じ種別が登録済みの場合はErrDuplicateKindを返し、既存の登録は変更しない
func (r *Registry) Register(d *Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	if _, ok := r.byKind[d.Kind]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateKind, d.Kind)
	}
	if prev, ok := r.byShort[d.ShortName]; ok {
		return fmt.Errorf("%w: 短縮名 %q は %v が使用中です", ErrDuplicateKind, d.ShortName, prev.Kind)
	}
	r.byKind[d.Kind] = d
	r.byShort[d.ShortName] = d
	return nil
}

// Lookup はデバイス種別から定義を検索する
func (r *Registry) Lookup(kind Kind) (*Descriptor, error) {
	d, ok := r.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, kind)
	}
	return d, nil
}

// LookupShortName は短縮名から定義を検索する
func (r *Registry) LookupShortName(name string) (*Descriptor, error) {
	d, ok := r.byShort[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return d, nil
}

// Kinds は登録済みのデバイス種別を昇順で返す
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.byKind))
	for k := range r.byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Select はデバイスを選択し、定義のSetupフックを一度だけ実行する
func (r *Registry) Select(kind Kind) (*Descriptor, error) {
	d, err := r.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if d.Setup != nil {
		if err := d.Setup(r, d); err != nil {
			return nil, fmt.Errorf("デバイス %v の初期化に失敗しました: %w", kind, err)
		}
		return d, nil
	}
	r.SetCurrent(d)
	return d, nil
}

// SetCurrent はカレントデバイスを設定する
func (r *Registry) SetCurrent(d *Descriptor) {
	r.current = d
}

// Current はカレントデバイスを返す（未選択の場合はnil）
func (r *Registry) Current() *Descriptor {
	return r.current
}
