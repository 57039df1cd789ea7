package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"

	"DailyFM/core/recommend"
	"DailyFM/logger"
	"DailyFM/model"

	"github.com/gorilla/mux"
)

// APIResponse 统一响应包装
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RecommendHandler 处理推荐相关的API请求
type RecommendHandler struct {
	svc *recommend.Service
}

// NewRecommendHandler 创建新的推荐处理器
func NewRecommendHandler(svc *recommend.Service) *RecommendHandler {
	return &RecommendHandler{svc: svc}
}

var dateParamPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// writeJSON 写出JSON响应
func writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// writeError 把错误分类映射为HTTP状态码
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, recommend.ErrNotFound),
		errors.Is(err, recommend.ErrNoEligibleSong):
		status = http.StatusNotFound
	case errors.Is(err, recommend.ErrProviderUnavailable),
		errors.Is(err, recommend.ErrEmptyCatalog):
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", logger.ErrorField(err))
	}
	writeJSON(w, status, APIResponse{Success: false, Error: err.Error()})
}

// GetDailyHandler 返回当日推荐歌单，当天首次调用时计算
func (h *RecommendHandler) GetDailyHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.svc.GetDaily(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: playlist})
}

// fetchRequest 强制刷新镜像的请求体，两个字段都可省略
type fetchRequest struct {
	StartYear int `json:"startYear"`
	EndYear   int `json:"endYear"`
}

// FetchHandler 强制从曲库方刷新镜像
func (h *RecommendHandler) FetchHandler(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	var yearRange *model.YearRange
	if req.StartYear > 0 || req.EndYear > 0 {
		yearRange = &model.YearRange{StartYear: req.StartYear, EndYear: req.EndYear}
	}

	songs, err := h.svc.RefreshMirror(r.Context(), yearRange)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: songs})
}

// GetHistoryHandler 返回历史记录，支持按日期过滤
func (h *RecommendHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" && !dateParamPattern.MatchString(date) {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: "invalid date, expected YYYY-MM-DD"})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: h.svc.History(date)})
}

// ClearHistoryHandler 删除某天或全部历史记录
func (h *RecommendHandler) ClearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" && !dateParamPattern.MatchString(date) {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: "invalid date, expected YYYY-MM-DD"})
		return
	}

	if err := h.svc.ClearHistory(r.Context(), date); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]string{"message": "history cleared"}})
}

// RandomHandler 随机返回一首历史窗口之外的歌曲
func (h *RecommendHandler) RandomHandler(w http.ResponseWriter, r *http.Request) {
	song, err := h.svc.Random()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: song})
}

// MirrorStatsHandler 返回镜像概况
func (h *RecommendHandler) MirrorStatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: h.svc.MirrorStats()})
}

// ArchiveHandler 查询某天的归档歌单
func (h *RecommendHandler) ArchiveHandler(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !dateParamPattern.MatchString(date) {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: "invalid date, expected YYYY-MM-DD"})
		return
	}

	playlist, err := h.svc.ArchivedPlaylist(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: playlist})
}

// GetSongHandler 查单曲详情，先查镜像再回源曲库方
func (h *RecommendHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: "missing song id"})
		return
	}

	song, err := h.svc.SongByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: song})
}
