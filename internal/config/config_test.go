package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evsim", "config.toml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("デフォルト設定と一致しません (-want +got):\n%s", diff)
	}

	// デフォルト設定がファイルとして保存されている
	if _, err := os.Stat(path); err != nil {
		t.Errorf("設定ファイルが作成されていません: %v", err)
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	want := &Config{
		Uinput: UinputConfig{
			Path:            "/dev/uinput",
			NodeWaitTimeout: 5 * time.Second,
		},
		Env: map[string]string{"ID_INPUT_TOUCHPAD": "1"},
		API: APIConfig{Port: 9999},
		Log: LogConfig{Level: "debug", Journal: true},
	}
	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("保存と読み込みで設定が変化しました (-want +got):\n%s", diff)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Uinput.Path != "/dev/uinput" {
		t.Errorf("uinputパスが %q になりました", cfg.Uinput.Path)
	}
	if cfg.Uinput.NodeWaitTimeout <= 0 {
		t.Errorf("ノード待機時間が %v になりました", cfg.Uinput.NodeWaitTimeout)
	}
	if cfg.API.Port == 0 {
		t.Errorf("APIポートが未設定です")
	}
}
