package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/char5742/evsim/internal/config"
)

// Server はAPIサーバーを表す構造体
type Server struct {
	server *http.Server
	svc    *DeviceService
	cfg    *config.Config
	mutex  sync.RWMutex
	port   int
}

// NewServer は新しいAPIサーバーを作成する
func NewServer(cfg *config.Config, svc *DeviceService, port int) *Server {
	return &Server{
		cfg:  cfg,
		svc:  svc,
		port: port,
	}
}

// Start はAPIサーバーを開始する
func (s *Server) Start() error {
	router := http.NewServeMux()
	s.setupRoutes(router)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: router,
	}

	slog.Info("APIサーバーを開始します", "url", fmt.Sprintf("http://localhost:%d", s.port))
	return s.server.ListenAndServe()
}

// Stop はAPIサーバーを停止する
func (s *Server) Stop(ctx context.Context) error {
	s.svc.CloseAll()
	if s.server != nil {
		slog.Info("APIサーバーを停止します")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// GetConfig は現在の設定を返す
func (s *Server) GetConfig() *config.Config {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.cfg
}

// UpdateConfig は設定を更新する
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.cfg = cfg
}

// writeJSON はJSONレスポンスを書き込む
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Warn("JSONエンコードエラー", "error", err)
		}
	}
}

// writeError はエラーレスポンスを書き込む
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
