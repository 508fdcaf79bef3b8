package features

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unsafe"

	"github.com/char5742/evsim/internal/consts"
	"github.com/char5742/evsim/internal/device"
	"github.com/char5742/evsim/internal/template"
	"github.com/char5742/evsim/internal/types"
	"github.com/char5742/evsim/internal/utils"
)

const sysfsVirtualDir = "/sys/devices/virtual/input"

// Device はデバイス定義から作成されたカーネル可視の仮想デバイスを表す
type Device struct {
	desc       *device.Descriptor
	deviceFile *os.File
	node       string // /dev/input/eventN
}

// CreateDevice はデバイス定義からuinput経由で仮想デバイスを作成する
// nodeWaitはデバイスノードが/dev/inputに現れるまでの待機時間
func CreateDevice(path string, desc *device.Descriptor, nodeWait time.Duration) (*Device, error) {
	deviceFile, err := createDeviceFile(path)
	if err != nil {
		return nil, err
	}

	if err := registerBits(deviceFile, desc); err != nil {
		_ = deviceFile.Close()
		return nil, err
	}

	fd, err := createUserDevice(deviceFile, buildUserDev(desc))
	if err != nil {
		return nil, err
	}

	node, err := deviceNode(fd, nodeWait)
	if err != nil {
		_ = releaseDevice(fd)
		_ = fd.Close()
		return nil, err
	}

	return &Device{desc: desc, deviceFile: fd, node: node}, nil
}

// Descriptor は作成元のデバイス定義を返す
func (vd *Device) Descriptor() *device.Descriptor {
	return vd.desc
}

// Node は作成されたデバイスノードのパスを返す
func (vd *Device) Node() string {
	return vd.node
}

// Close はデバイスを破棄してファイルを閉じる
func (vd *Device) Close() error {
	_ = releaseDevice(vd.deviceFile)
	return vd.deviceFile.Close()
}

// Inject は解決済みイベント列にタイムスタンプを付与してデバイスに書き込む
func (vd *Device) Inject(events []types.Event) error {
	if len(events) == 0 {
		return nil
	}
	now := syscall.NsecToTimeval(time.Now().UnixNano())
	stamped := make([]types.Event, len(events))
	for i, ev := range events {
		ev.Time = now
		stamped[i] = ev
	}
	return writeEvents(vd.deviceFile, stamped)
}

// TouchDown はタッチ開始テンプレートを展開して注入する
func (vd *Device) TouchDown() error {
	return vd.injectTemplate(vd.desc.TouchDown)
}

// TouchMove はタッチ移動テンプレートを展開して注入する
func (vd *Device) TouchMove() error {
	return vd.injectTemplate(vd.desc.TouchMove)
}

func (vd *Device) injectTemplate(tmpl []device.Template) error {
	// テンプレートを持たないデバイス（マウスなど）では何もしない
	if len(tmpl) == 0 {
		return nil
	}
	events, err := template.Expand(vd.desc, tmpl)
	if err != nil {
		return err
	}
	return vd.Inject(events)
}

// registerBits はデバイス定義のイベント・軸・プロパティビットを登録する
func registerBits(deviceFile *os.File, desc *device.Descriptor) error {
	evTypes := make(map[uint16]bool, 4)
	for _, ec := range desc.Events {
		evTypes[ec.Type] = true
	}
	if len(desc.Axes) > 0 {
		evTypes[consts.Abs] = true
	}

	for evType := range evTypes {
		if err := utils.IOCtl(deviceFile, consts.SetEvBit, uintptr(evType)); err != nil {
			return fmt.Errorf("イベントタイプ 0x%x の登録に失敗しました: %v", evType, err)
		}
	}

	// 報告するイベントコードを定義の順序どおりに登録する
	for _, ec := range desc.Events {
		var cmd uintptr
		switch ec.Type {
		case consts.Key:
			cmd = consts.SetKeyBit
		case consts.Rel:
			cmd = consts.SetRelBit
		case consts.Abs:
			cmd = consts.SetAbsBit
		default:
			return fmt.Errorf("イベントタイプ 0x%x は登録に対応していません", ec.Type)
		}
		if err := utils.IOCtl(deviceFile, cmd, uintptr(ec.Code)); err != nil {
			return fmt.Errorf("イベントコード 0x%x の登録に失敗しました: %v", ec.Code, err)
		}
	}

	for _, axis := range desc.Axes {
		if err := utils.IOCtl(deviceFile, consts.SetAbsBit, uintptr(axis.Code)); err != nil {
			return fmt.Errorf("座標軸 0x%x の登録に失敗しました: %v", axis.Code, err)
		}
	}

	if desc.HasFeature(device.FeatureTouchpad) {
		if err := utils.IOCtl(deviceFile, consts.SetPropBit, uintptr(consts.PropPointer)); err != nil {
			return fmt.Errorf("ポインターデバイスプロパティの設定に失敗しました: %v", err)
		}
	}
	if desc.HasFeature(device.FeatureClickpad) {
		if err := utils.IOCtl(deviceFile, consts.SetPropBit, uintptr(consts.PropButtonpad)); err != nil {
			return fmt.Errorf("ボタンパッドプロパティの設定に失敗しました: %v", err)
		}
	}

	return nil
}

// buildUserDev はデバイス定義からuinputユーザーデバイス構造体を構築する
// uinput_user_devは解像度を持たないため、軸のResolutionはここでは反映されない
func buildUserDev(desc *device.Descriptor) types.UserDev {
	userDev := types.UserDev{
		Name: toUinputName([]byte(desc.Name)),
		ID:   desc.ID,
	}
	for _, axis := range desc.Axes {
		if int(axis.Code) >= consts.AbsSize {
			continue
		}
		userDev.Absmin[axis.Code] = axis.Min
		userDev.Absmax[axis.Code] = axis.Max
		userDev.Absfuzz[axis.Code] = axis.Fuzz
		userDev.Absflat[axis.Code] = axis.Flat
	}
	return userDev
}

// deviceNode は作成した仮想デバイスの/dev/inputノードを特定する
func deviceNode(deviceFile *os.File, nodeWait time.Duration) (string, error) {
	var buf [64]byte
	if err := utils.IOCtl(deviceFile, consts.GetSysname, uintptr(unsafe.Pointer(&buf[0]))); err != nil {
		return "", fmt.Errorf("sysfs名の取得に失敗しました: %v", err)
	}
	sysname := strings.TrimRight(string(buf[:]), "\x00")

	sysdir := filepath.Join(sysfsVirtualDir, sysname)
	entries, err := os.ReadDir(sysdir)
	if err != nil {
		return "", fmt.Errorf("sysfsディレクトリの読み取りに失敗しました: %v", err)
	}

	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "event") {
			continue
		}
		node := filepath.Join("/dev/input", entry.Name())
		if err := waitForNode(node, nodeWait); err != nil {
			return "", err
		}
		return node, nil
	}

	return "", fmt.Errorf("デバイスノードが %s に見つかりませんでした", sysdir)
}

// デバイスファイルを作成する
func createDeviceFile(path string) (*os.File, error) {
	deviceFile, err := os.OpenFile(path, syscall.O_WRONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%s を開く権限がありません（root権限が必要です）: %v", path, err)
		}
		return nil, fmt.Errorf("デバイスファイルを開くのに失敗しました: %v", err)
	}
	return deviceFile, nil
}

// デバイスを解放する
func releaseDevice(deviceFile *os.File) error {
	return utils.IOCtl(deviceFile, consts.DevDestroy, uintptr(0))
}

// ユーザーデバイス構造体を書き込んでデバイスを作成する
func createUserDevice(deviceFile *os.File, dev types.UserDev) (*os.File, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, dev); err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("ユーザーデバイスバッファの書き込みに失敗しました: %v", err)
	}
	if _, err := deviceFile.Write(buf.Bytes()); err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("デバイス構造体をデバイスファイルに書き込むのに失敗しました: %v", err)
	}

	if err := utils.IOCtl(deviceFile, consts.DevCreate, uintptr(0)); err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("デバイスの作成に失敗しました: %v", err)
	}

	return deviceFile, nil
}

// イベントを書き込む
func writeEvents(deviceFile *os.File, events []types.Event) error {
	for _, ev := range events {
		buf := new(bytes.Buffer)
		if err := binary.Write(buf, binary.LittleEndian, ev); err != nil {
			return fmt.Errorf("イベントをバッファに書き込むのに失敗しました: %v", err)
		}
		if _, err := deviceFile.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("イベントの書き込みに失敗しました: %v", err)
		}
	}
	return nil
}

// 名前をuinput用の固定長配列に変換する
func toUinputName(name []byte) (uinputName [consts.MaxNameSize]byte) {
	copy(uinputName[:], name)
	return uinputName
}
