package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config はハーネス全体の設定を表す構造体
type Config struct {
	Uinput UinputConfig      `toml:"uinput"`
	Env    map[string]string `toml:"env"`
	API    APIConfig         `toml:"api"`
	Log    LogConfig         `toml:"log"`
}

// UinputConfig は仮想デバイス作成の設定
type UinputConfig struct {
	Path            string        `toml:"path"`
	NodeWaitTimeout time.Duration `toml:"node_wait_timeout"`
}

// APIConfig はAPIサーバーの設定
type APIConfig struct {
	Port int `toml:"port"`
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level   string `toml:"level"`
	Journal bool   `toml:"journal"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		Uinput: UinputConfig{
			Path:            "/dev/uinput",
			NodeWaitTimeout: 3 * time.Second,
		},
		Env: map[string]string{},
		API: APIConfig{
			Port: 8080,
		},
		Log: LogConfig{
			Level:   "info",
			Journal: false,
		},
	}
}

// GetDefaultConfigDir はデフォルトの設定ディレクトリを返す
func GetDefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "evsim"), nil
}

// LoadConfig は設定ファイルから設定を読み込む
func LoadConfig(configPath string) (*Config, error) {
	// デフォルト設定を用意
	config := DefaultConfig()

	// ファイルが存在しない場合はデフォルト設定を保存して返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return config, err
		}

		if err := SaveConfig(configPath, config); err != nil {
			return config, err
		}

		return config, nil
	}

	// 設定ファイルの読み込み
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return config, err
	}

	return config, nil
}

// SaveConfig は設定をTOMLファイルに保存する
func SaveConfig(configPath string, config *Config) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(config)
}
