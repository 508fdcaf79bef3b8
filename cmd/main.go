package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/char5742/evsim/internal/api"
	"github.com/char5742/evsim/internal/config"
	"github.com/char5742/evsim/internal/device"
	"github.com/char5742/evsim/internal/features"
	"github.com/char5742/evsim/internal/logging"
	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"
)

func main() {
	// コマンドライン引数の解析
	useApi := flag.Bool("api", false, "APIサーバーモードで起動します")
	configPath := flag.String("config", "", "設定ファイルのパス (指定しない場合はデフォルトパスを使用)")
	port := flag.Int("port", 0, "APIサーバーのポート番号 (0の場合は設定値を使用)")
	web := flag.Bool("web", false, "APIサーバー起動後にブラウザを開きます")
	list := flag.Bool("list", false, "登録済みデバイス定義の一覧を表示します")
	deviceName := flag.String("device", "", "作成するデバイスの短縮名")
	gestures := flag.String("gesture", "down", "注入するジェスチャーのコンマ区切りリスト (down, move)")
	interval := flag.Duration("interval", 12*time.Millisecond, "ジェスチャー間の待機時間")
	flag.Parse()

	// デフォルト設定ファイルパスの設定
	cfgPath := *configPath
	if cfgPath == "" {
		if configDir, err := config.GetDefaultConfigDir(); err == nil {
			cfgPath = filepath.Join(configDir, "config.toml")
		}
	}

	// 設定ファイルの読み込み
	var cfg *config.Config
	if cfgPath != "" {
		var err error
		cfg, err = config.LoadConfig(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "設定ファイルの読み込みに失敗しました: %v\nデフォルト設定を使用します\n", err)
			cfg = config.DefaultConfig()
		}
	} else {
		cfg = config.DefaultConfig()
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Journal)

	// 組み込みデバイス定義の登録
	registry, err := device.Builtin()
	if err != nil {
		slog.Error("デバイス定義の登録に失敗しました", "error", err)
		os.Exit(1)
	}

	if *list {
		printDevices(registry)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *useApi {
		apiPort := *port
		if apiPort == 0 {
			apiPort = cfg.API.Port
		}
		if err := runApiServer(ctx, cfg, registry, apiPort, *web); err != nil {
			slog.Error("APIサーバーの実行に失敗しました", "error", err)
			os.Exit(1)
		}
		return
	}

	if *deviceName == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := runGesture(cfg, registry, *deviceName, *gestures, *interval); err != nil {
		slog.Error("ジェスチャー注入に失敗しました", "error", err)
		os.Exit(1)
	}
}

// printDevices は登録済みデバイス定義の一覧を表示する
func printDevices(registry *device.Registry) {
	for _, kind := range registry.Kinds() {
		d, err := registry.Lookup(kind)
		if err != nil {
			continue
		}
		fmt.Printf("%-12s %-24s bus=0x%02x vendor=0x%04x product=0x%04x axes=%d\n",
			d.ShortName, d.Name, d.ID.Bustype, d.ID.Vendor, d.ID.Product, len(d.Axes))
	}
}

// APIサーバーモードでの実行
func runApiServer(ctx context.Context, cfg *config.Config, registry *device.Registry, port int, web bool) error {
	svc := api.NewDeviceService(cfg, registry)
	server := api.NewServer(cfg, svc, port)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	if web {
		url := fmt.Sprintf("http://localhost:%d/api/devices", port)
		if err := browser.OpenURL(url); err != nil {
			slog.Warn("ブラウザの起動に失敗しました", "url", url, "error", err)
		}
	}

	err := eg.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// 指定デバイスを作成してジェスチャーを注入する
func runGesture(cfg *config.Config, registry *device.Registry, shortName, gestures string, interval time.Duration) error {
	d, err := registry.LookupShortName(shortName)
	if err != nil {
		return err
	}
	if _, err := registry.Select(d.Kind); err != nil {
		return err
	}

	vd, err := features.CreateDevice(cfg.Uinput.Path, d, cfg.Uinput.NodeWaitTimeout)
	if err != nil {
		return err
	}
	defer vd.Close()

	slog.Info("仮想デバイスを作成しました", "device", d.ShortName, "node", vd.Node())

	props, err := vd.Classify(cfg.Env)
	if err != nil {
		return err
	}
	for key, value := range props {
		slog.Info("分類プロパティ", "key", key, "value", value)
	}

	for i, gesture := range strings.Split(gestures, ",") {
		if i > 0 {
			time.Sleep(interval)
		}
		switch strings.TrimSpace(gesture) {
		case "down":
			err = vd.TouchDown()
		case "move":
			err = vd.TouchMove()
		default:
			err = fmt.Errorf("未対応のジェスチャーです: %q", gesture)
		}
		if err != nil {
			return err
		}
		slog.Debug("ジェスチャーを注入しました", "gesture", gesture)
	}

	return nil
}
