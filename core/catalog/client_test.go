package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DailyFM/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestFetchSongsSuccess(t *testing.T) {
	var gotStart, gotEnd string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/songs" {
			t.Errorf("path = %s, want /songs", r.URL.Path)
		}
		gotStart = r.URL.Query().Get("startYear")
		gotEnd = r.URL.Query().Get("endYear")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 200,
			"songs": []model.Song{
				{ID: "1", Title: "One", Artist: "A", Genre: "rock", ReleaseYear: 1999, PopularityScore: 80, AudioURL: "http://x/1.mp3"},
				{ID: "2", Title: "Two", Artist: "B", Genre: "pop", ReleaseYear: 2005, PopularityScore: 60, AudioURL: "http://x/2.mp3"},
			},
		})
	})

	songs, err := client.FetchSongs(context.Background(), &model.YearRange{StartYear: 1990, EndYear: 2010})
	if err != nil {
		t.Fatalf("FetchSongs: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("len = %d, want 2", len(songs))
	}
	if songs[0].ID != "1" || songs[0].Genre != "rock" {
		t.Errorf("unexpected first song: %+v", songs[0])
	}
	if gotStart != "1990" || gotEnd != "2010" {
		t.Errorf("year range params = %s..%s, want 1990..2010", gotStart, gotEnd)
	}
}

func TestFetchSongsOmitsUnsetYearRange(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("startYear") || r.URL.Query().Has("endYear") {
			t.Errorf("unexpected year params in query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 200, "songs": []model.Song{}})
	})

	if _, err := client.FetchSongs(context.Background(), nil); err != nil {
		t.Fatalf("FetchSongs: %v", err)
	}
}

func TestFetchSongsProviderErrorCode(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 503, "msg": "rate limited"})
	})

	if _, err := client.FetchSongs(context.Background(), nil); err == nil {
		t.Fatal("expected error for non-200 provider code")
	}
}

func TestFetchSongsHTTPError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := client.FetchSongs(context.Background(), nil); err == nil {
		t.Fatal("expected error for 500 status")
	}
}

func TestFetchSongsRetriesTransientFailure(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":  200,
			"songs": []model.Song{{ID: "1", Title: "One", Genre: "rock"}},
		})
	})

	songs, err := client.FetchSongs(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchSongs: %v", err)
	}
	if len(songs) != 1 {
		t.Errorf("len = %d, want 1", len(songs))
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestGetSongByIDFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/song/detail" {
			t.Errorf("path = %s, want /song/detail", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "42" {
			t.Errorf("id param = %s, want 42", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":  200,
			"songs": []model.Song{{ID: "42", Title: "Answer", Genre: "rock", ReleaseYear: 1979, PopularityScore: 95}},
		})
	})

	song, err := client.GetSongByID(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetSongByID: %v", err)
	}
	if song == nil || song.ID != "42" {
		t.Fatalf("song = %+v, want ID 42", song)
	}
}

func TestGetSongByIDMissReturnsNil(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 200, "songs": []model.Song{}})
	})

	song, err := client.GetSongByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetSongByID: %v", err)
	}
	if song != nil {
		t.Errorf("song = %+v, want nil for a provider miss", song)
	}
}
