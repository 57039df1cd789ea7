package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"DailyFM/core/recommend"
	"DailyFM/model"

	"github.com/gorilla/mux"
)

// stubProvider 可编程的曲库方
type stubProvider struct {
	mu       sync.Mutex
	songs    []model.Song
	fetchErr error
	byID     map[string]model.Song
}

func (p *stubProvider) FetchSongs(ctx context.Context, yearRange *model.YearRange) ([]model.Song, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.songs, nil
}

func (p *stubProvider) GetSongByID(ctx context.Context, id string) (*model.Song, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.byID[id]; ok {
		return &s, nil
	}
	return nil, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func stubCatalog() []model.Song {
	return []model.Song{
		{ID: "a", Title: "Alpha", Artist: "X", Genre: "rock", ReleaseYear: 2000, PopularityScore: 90, AudioURL: "http://x/a.mp3"},
		{ID: "b", Title: "Beta", Artist: "Y", Genre: "pop", ReleaseYear: 2005, PopularityScore: 80, AudioURL: "http://x/b.mp3"},
		{ID: "c", Title: "Gamma", Artist: "Z", Genre: "jazz", ReleaseYear: 2010, PopularityScore: 70, AudioURL: "http://x/c.mp3"},
	}
}

func newTestRouter(provider *stubProvider) *mux.Router {
	svc := recommend.NewService(provider, recommend.ServiceConfig{
		TargetSize: 2,
		Clock:      fixedClock{t: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)},
		Seed:       1,
	})
	handler := NewRecommendHandler(svc)

	router := mux.NewRouter()
	router.HandleFunc("/api/daily", handler.GetDailyHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/fetch", handler.FetchHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/history", handler.GetHistoryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/history", handler.ClearHistoryHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/random", handler.RandomHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/mirror", handler.MirrorStatsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/archive", handler.ArchiveHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/songs/{id}", handler.GetSongHandler).Methods(http.MethodGet)
	return router
}

func doRequest(t *testing.T, router *mux.Router, method, target, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func TestGetDailyHandler(t *testing.T) {
	router := newTestRouter(&stubProvider{songs: stubCatalog()})

	rec, resp := doRequest(t, router, http.MethodGet, "/api/daily", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !resp.Success {
		t.Fatalf("success = false, error = %s", resp.Error)
	}

	data := resp.Data.(map[string]interface{})
	if data["date"] != "2026-08-29" {
		t.Errorf("date = %v, want 2026-08-29", data["date"])
	}
	if songs := data["songs"].([]interface{}); len(songs) != 2 {
		t.Errorf("songs = %d, want 2", len(songs))
	}
}

func TestGetDailyHandlerProviderFailure(t *testing.T) {
	router := newTestRouter(&stubProvider{fetchErr: errors.New("connection refused")})

	rec, resp := doRequest(t, router, http.MethodGet, "/api/daily", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if resp.Success {
		t.Error("success should be false on provider failure")
	}
	if resp.Error == "" {
		t.Error("error message should be populated")
	}
}

func TestFetchHandler(t *testing.T) {
	router := newTestRouter(&stubProvider{songs: stubCatalog()})

	rec, resp := doRequest(t, router, http.MethodPost, "/api/fetch", `{"startYear":1990,"endYear":2020}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if songs := resp.Data.([]interface{}); len(songs) != 3 {
		t.Errorf("songs = %d, want 3", len(songs))
	}
}

func TestFetchHandlerEmptyBody(t *testing.T) {
	router := newTestRouter(&stubProvider{songs: stubCatalog()})

	rec, _ := doRequest(t, router, http.MethodPost, "/api/fetch", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for empty body", rec.Code)
	}
}

func TestFetchHandlerInvalidBody(t *testing.T) {
	router := newTestRouter(&stubProvider{songs: stubCatalog()})

	rec, _ := doRequest(t, router, http.MethodPost, "/api/fetch", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHistoryHandlers(t *testing.T) {
	router := newTestRouter(&stubProvider{songs: stubCatalog()})

	// 先生成当天的历史
	doRequest(t, router, http.MethodGet, "/api/daily", "")

	rec, resp := doRequest(t, router, http.MethodGet, "/api/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if entries := resp.Data.([]interface{}); len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	// 按日期过滤
	_, resp = doRequest(t, router, http.MethodGet, "/api/history?date=2026-08-29", "")
	if entries := resp.Data.([]interface{}); len(entries) != 1 {
		t.Errorf("filtered entries = %d, want 1", len(entries))
	}
	_, resp = doRequest(t, router, http.MethodGet, "/api/history?date=2000-01-01", "")
	if resp.Data != nil {
		if entries := resp.Data.([]interface{}); len(entries) != 0 {
			t.Errorf("entries for unknown date = %d, want 0", len(entries))
		}
	}

	// 非法日期参数
	rec, _ = doRequest(t, router, http.MethodGet, "/api/history?date=yesterday", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed date", rec.Code)
	}

	// 清空全部历史
	rec, _ = doRequest(t, router, http.MethodDelete, "/api/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d, want 200", rec.Code)
	}
	_, resp = doRequest(t, router, http.MethodGet, "/api/history", "")
	if resp.Data != nil {
		if entries := resp.Data.([]interface{}); len(entries) != 0 {
			t.Errorf("entries after clear = %d, want 0", len(entries))
		}
	}
}

func TestRandomHandlerNoEligibleSong(t *testing.T) {
	// 目标长度2、曲库2首时当天全部推送，随机挑歌应404
	router := newTestRouter(&stubProvider{songs: stubCatalog()[:2]})

	doRequest(t, router, http.MethodGet, "/api/daily", "")

	rec, resp := doRequest(t, router, http.MethodGet, "/api/random", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Success {
		t.Error("success should be false when no song is eligible")
	}
}

func TestRandomHandlerReturnsEligibleSong(t *testing.T) {
	router := newTestRouter(&stubProvider{songs: stubCatalog()})

	doRequest(t, router, http.MethodGet, "/api/daily", "")

	rec, resp := doRequest(t, router, http.MethodGet, "/api/random", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	song := resp.Data.(map[string]interface{})
	if song["id"] == "" {
		t.Error("expected a song with an id")
	}
}

func TestGetSongHandler(t *testing.T) {
	provider := &stubProvider{
		songs: stubCatalog(),
		byID:  map[string]model.Song{"z": {ID: "z", Title: "Zeta", Genre: "metal", ReleaseYear: 2015, PopularityScore: 40}},
	}
	router := newTestRouter(provider)

	// 填充镜像
	doRequest(t, router, http.MethodPost, "/api/fetch", "")

	rec, resp := doRequest(t, router, http.MethodGet, "/api/songs/a", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if song := resp.Data.(map[string]interface{}); song["id"] != "a" {
		t.Errorf("id = %v, want a", song["id"])
	}

	// 镜像未命中，回源曲库方
	rec, resp = doRequest(t, router, http.MethodGet, "/api/songs/z", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if song := resp.Data.(map[string]interface{}); song["id"] != "z" {
		t.Errorf("id = %v, want z", song["id"])
	}

	// 两边都没有
	rec, _ = doRequest(t, router, http.MethodGet, "/api/songs/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMirrorStatsHandler(t *testing.T) {
	router := newTestRouter(&stubProvider{songs: stubCatalog()})

	doRequest(t, router, http.MethodPost, "/api/fetch", "")

	rec, resp := doRequest(t, router, http.MethodGet, "/api/mirror", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	stats := resp.Data.(map[string]interface{})
	if stats["size"].(float64) != 3 {
		t.Errorf("size = %v, want 3", stats["size"])
	}
}

func TestArchiveHandlerWithoutArchiveStore(t *testing.T) {
	router := newTestRouter(&stubProvider{songs: stubCatalog()})

	rec, _ := doRequest(t, router, http.MethodGet, "/api/archive?date=2026-08-01", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when archiving is disabled", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/archive", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing date", rec.Code)
	}
}
