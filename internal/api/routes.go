package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/char5742/evsim/internal/config"
	"github.com/char5742/evsim/internal/device"
)

// ルートの設定
func (s *Server) setupRoutes(router *http.ServeMux) {
	// 設定関連のエンドポイント
	router.HandleFunc("GET /api/config", s.handleGetConfig)
	router.HandleFunc("PUT /api/config", s.handleUpdateConfig)
	router.HandleFunc("POST /api/config/save", s.handleSaveConfig)

	// デバイス関連のエンドポイント
	router.HandleFunc("GET /api/devices", s.handleListDevices)
	router.HandleFunc("GET /api/devices/{name}", s.handleDescribeDevice)
	router.HandleFunc("POST /api/devices/{name}/create", s.handleCreateDevice)
	router.HandleFunc("DELETE /api/devices/{name}", s.handleDestroyDevice)
	router.HandleFunc("POST /api/devices/{name}/touch-down", s.handleTouchDown)
	router.HandleFunc("POST /api/devices/{name}/touch-move", s.handleTouchMove)
	router.HandleFunc("GET /api/devices/{name}/classify", s.handleClassify)
	router.HandleFunc("GET /api/devices/{name}/expand", s.handleExpand)

	// ヘルスチェック用エンドポイント
	router.HandleFunc("GET /api/health", s.handleHealthCheck)
}

// 設定取得ハンドラ
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.GetConfig())
}

// 設定更新ハンドラ
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var newConfig config.Config

	if err := json.NewDecoder(r.Body).Decode(&newConfig); err != nil {
		writeError(w, http.StatusBadRequest, "設定の解析に失敗しました")
		return
	}

	s.UpdateConfig(&newConfig)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// 設定保存ハンドラ
func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var saveRequest struct {
		Path string `json:"path"`
	}

	if err := json.NewDecoder(r.Body).Decode(&saveRequest); err != nil {
		writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}

	configPath := saveRequest.Path
	if configPath == "" {
		userConfigDir, err := config.GetDefaultConfigDir()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "デフォルト設定ディレクトリの取得に失敗しました")
			return
		}
		configPath = filepath.Join(userConfigDir, "config.toml")
	}

	if err := config.SaveConfig(configPath, s.GetConfig()); err != nil {
		writeError(w, http.StatusInternalServerError, "設定の保存に失敗しました: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"path":   configPath,
	})
}

// デバイス一覧ハンドラ
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.List())
}

// デバイス詳細ハンドラ
func (s *Server) handleDescribeDevice(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.Describe(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// デバイス作成ハンドラ
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	node, err := s.svc.Create(r.PathValue("name"))
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"node": node})
}

// デバイス破棄ハンドラ
func (s *Server) handleDestroyDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Destroy(r.PathValue("name")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// タッチ開始ハンドラ
func (s *Server) handleTouchDown(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.TouchDown(r.PathValue("name")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// タッチ移動ハンドラ
func (s *Server) handleTouchMove(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.TouchMove(r.PathValue("name")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// 分類ハンドラ
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	props, err := s.svc.Classify(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, props)
}

// テンプレート展開ハンドラ（ドライラン）
func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	gesture := r.URL.Query().Get("gesture")
	if gesture == "" {
		gesture = "down"
	}

	events, err := s.svc.Expand(r.PathValue("name"), gesture)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	type eventJSON struct {
		Type  uint16 `json:"type"`
		Code  uint16 `json:"code"`
		Value int32  `json:"value"`
	}
	out := make([]eventJSON, len(events))
	for i, ev := range events {
		out[i] = eventJSON{Type: ev.Type, Code: ev.Code, Value: ev.Value}
	}
	writeJSON(w, http.StatusOK, out)
}

// ヘルスチェックハンドラ
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
