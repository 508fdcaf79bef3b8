package api

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/char5742/evsim/internal/config"
	"github.com/char5742/evsim/internal/device"
	"github.com/char5742/evsim/internal/features"
	"github.com/char5742/evsim/internal/template"
	"github.com/char5742/evsim/internal/types"
)

// DeviceService は仮想デバイスの作成・注入・分類を管理する構造体
type DeviceService struct {
	cfg      *config.Config
	registry *device.Registry
	mutex    sync.Mutex
	active   map[string]*features.Device // 短縮名をキーにした作成済みデバイス
}

// NewDeviceService は新しいデバイスサービスを作成する
func NewDeviceService(cfg *config.Config, registry *device.Registry) *DeviceService {
	return &DeviceService{
		cfg:      cfg,
		registry: registry,
		active:   make(map[string]*features.Device),
	}
}

// DeviceSummary はデバイス一覧用の要約情報
type DeviceSummary struct {
	Kind      string `json:"kind"`
	ShortName string `json:"short_name"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Node      string `json:"node,omitempty"`
}

// DeviceDetail はデバイス定義の詳細情報
type DeviceDetail struct {
	DeviceSummary
	Bustype uint16             `json:"bustype"`
	Vendor  uint16             `json:"vendor"`
	Product uint16             `json:"product"`
	Events  []device.EventCode `json:"events"`
	Axes    []device.AbsAxis   `json:"axes,omitempty"`
}

// List は登録済みデバイスの一覧を返す
func (s *DeviceService) List() []DeviceSummary {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var list []DeviceSummary
	for _, kind := range s.registry.Kinds() {
		d, err := s.registry.Lookup(kind)
		if err != nil {
			continue
		}
		list = append(list, s.summaryLocked(d))
	}
	return list
}

// Describe は短縮名で指定したデバイス定義の詳細を返す
func (s *DeviceService) Describe(shortName string) (*DeviceDetail, error) {
	d, err := s.registry.LookupShortName(shortName)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	return &DeviceDetail{
		DeviceSummary: s.summaryLocked(d),
		Bustype:       d.ID.Bustype,
		Vendor:        d.ID.Vendor,
		Product:       d.ID.Product,
		Events:        d.Events,
		Axes:          d.Axes,
	}, nil
}

func (s *DeviceService) summaryLocked(d *device.Descriptor) DeviceSummary {
	summary := DeviceSummary{
		Kind:      d.Kind.String(),
		ShortName: d.ShortName,
		Name:      d.Name,
	}
	if vd, ok := s.active[d.ShortName]; ok {
		summary.Active = true
		summary.Node = vd.Node()
	}
	return summary
}

// Create は仮想デバイスを作成してノードのパスを返す
func (s *DeviceService) Create(shortName string) (string, error) {
	d, err := s.registry.LookupShortName(shortName)
	if err != nil {
		return "", err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.active[shortName]; ok {
		return "", fmt.Errorf("デバイス %q は既に作成されています", shortName)
	}

	if _, err := s.registry.Select(d.Kind); err != nil {
		return "", err
	}

	vd, err := features.CreateDevice(s.cfg.Uinput.Path, d, s.cfg.Uinput.NodeWaitTimeout)
	if err != nil {
		return "", err
	}
	s.active[shortName] = vd

	slog.Info("仮想デバイスを作成しました", "device", shortName, "node", vd.Node())
	return vd.Node(), nil
}

// Destroy は作成済みデバイスを破棄する
func (s *DeviceService) Destroy(shortName string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	vd, ok := s.active[shortName]
	if !ok {
		return fmt.Errorf("デバイス %q は作成されていません", shortName)
	}
	delete(s.active, shortName)

	if err := vd.Close(); err != nil {
		return fmt.Errorf("デバイス %q の破棄に失敗しました: %w", shortName, err)
	}
	slog.Info("仮想デバイスを破棄しました", "device", shortName)
	return nil
}

// TouchDown は作成済みデバイスにタッチ開始イベントを注入する
func (s *DeviceService) TouchDown(shortName string) error {
	vd, err := s.lookupActive(shortName)
	if err != nil {
		return err
	}
	return vd.TouchDown()
}

// TouchMove は作成済みデバイスにタッチ移動イベントを注入する
func (s *DeviceService) TouchMove(shortName string) error {
	vd, err := s.lookupActive(shortName)
	if err != nil {
		return err
	}
	return vd.TouchMove()
}

// Classify はデバイスの分類ルールを評価して導出プロパティを返す
// デバイスが未作成の場合はカーネル名をevent0と仮定して評価する
func (s *DeviceService) Classify(shortName string) (map[string]string, error) {
	d, err := s.registry.LookupShortName(shortName)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	vd, ok := s.active[shortName]
	s.mutex.Unlock()

	if ok {
		return vd.Classify(s.cfg.Env)
	}
	return features.Classify(d, features.BuildEnv(d, "event0", s.cfg.Env))
}

// Expand は指定ジェスチャーのテンプレートを展開した結果を返す（注入は行わない）
func (s *DeviceService) Expand(shortName, gesture string) ([]types.Event, error) {
	d, err := s.registry.LookupShortName(shortName)
	if err != nil {
		return nil, err
	}

	var tmpl []device.Template
	switch gesture {
	case "down":
		tmpl = d.TouchDown
	case "move":
		tmpl = d.TouchMove
	default:
		return nil, fmt.Errorf("未対応のジェスチャーです: %q", gesture)
	}

	return template.Expand(d, tmpl)
}

func (s *DeviceService) lookupActive(shortName string) (*features.Device, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	vd, ok := s.active[shortName]
	if !ok {
		return nil, fmt.Errorf("デバイス %q は作成されていません", shortName)
	}
	return vd, nil
}

// CloseAll は作成済みデバイスをすべて破棄する
func (s *DeviceService) CloseAll() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for shortName, vd := range s.active {
		if err := vd.Close(); err != nil {
			slog.Warn("デバイスの破棄に失敗しました", "device", shortName, "error", err)
		}
		delete(s.active, shortName)
	}
}
