package features

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// waitForNode はデバイスノードが/dev/inputに現れるまで待機する
// udevによるノード作成は非同期のため、fsnotifyで作成イベントを監視する
func waitForNode(node string, timeout time.Duration) error {
	if _, err := os.Stat(node); err == nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ファイルシステム監視の作成に失敗しました: %v", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(node)); err != nil {
		return fmt.Errorf("ディレクトリの監視に失敗しました: %v", err)
	}

	// 監視開始前にノードが作成されていた場合を拾う
	if _, err := os.Stat(node); err == nil {
		return nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("監視チャネルが閉じられました")
			}
			if event.Name == node && event.Op&fsnotify.Create == fsnotify.Create {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("エラーチャネルが閉じられました")
			}
			return fmt.Errorf("ファイルシステム監視エラー: %v", err)
		case <-deadline.C:
			return fmt.Errorf("デバイスノード %s の出現がタイムアウトしました (%v)", node, timeout)
		}
	}
}
