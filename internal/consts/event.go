package consts

// イベントタイプの定数（input-event-codes.hより）
const (
	Syn = 0x00 // 同期イベント
	Key = 0x01 // キーイベント
	Rel = 0x02 // 相対座標イベント
	Abs = 0x03 // 絶対座標イベント
	Msc = 0x04 // その他のイベント

	SynReport = 0 // イベント報告の同期

	RelX     = 0x0 // X軸の相対移動
	RelY     = 0x1 // Y軸の相対移動
	RelWheel = 0x8 // ホイールの相対移動

	AbsX            = 0x00 // X軸の絶対座標
	AbsY            = 0x01 // Y軸の絶対座標
	AbsPressure     = 0x18 // タッチ圧力
	AbsMtSlot       = 0x2f // マルチタッチスロット
	AbsMtTouchMajor = 0x30 // タッチ領域の長径
	AbsMtPositionX  = 0x35 // マルチタッチのX座標
	AbsMtPositionY  = 0x36 // マルチタッチのY座標
	AbsMtTrackingId = 0x39 // タッチ追跡用ID
	AbsMtPressure   = 0x3a // マルチタッチのタッチ圧力
)

// ボタン・キーコードの定数
const (
	BtnLeft          = 0x110 // マウス左ボタン
	BtnRight         = 0x111 // マウス右ボタン
	BtnMiddle        = 0x112 // マウス中ボタン
	BtnTouch         = 0x14a // 画面タッチの検出
	BtnToolFinger    = 0x145 // 指の接触検出
	BtnToolDoubleTap = 0x14d // 2本指の接触検出
	BtnToolTripleTap = 0x14e // 3本指の接触検出
	BtnToolQuadTap   = 0x14f // 4本指の接触検出

	KeyEsc       = 1  // ESCキー
	KeyEnter     = 28 // Enterキー
	KeyA         = 30 // Aキー
	KeyS         = 31 // Sキー
	KeyD         = 32 // Dキー
	KeyF         = 33 // Fキー
	KeyLeftShift = 42 // 左Shiftキー
	KeySpace     = 57 // スペースキー
)

// バスタイプの定数（input.hより）
const (
	BusPci       = 0x01 // PCIバス
	BusUsb       = 0x03 // USBバス
	BusBluetooth = 0x05 // Bluetoothバス
	BusVirtual   = 0x06 // 仮想バス
	BusI8042     = 0x11 // i8042（PS/2）バス
)
