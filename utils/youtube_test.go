package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeYouTube(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/playlists", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("id") != "PLgoodplaylist" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": []interface{}{}})
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"id":"PLgoodplaylist","snippet":{"title":"Go in depth"}}]}`))
	})

	mux.HandleFunc("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{"nextPageToken":"p2","items":[
				{"snippet":{"title":"Intro","position":0,"resourceId":{"videoId":"v0"}},"status":{"privacyStatus":"public"}},
				{"snippet":{"title":"Private video","position":1,"resourceId":{"videoId":"v1"}},"status":{"privacyStatus":"private"}}
			]}`))
			return
		}
		_, _ = w.Write([]byte(`{"items":[
			{"snippet":{"title":"Deleted video","position":2,"resourceId":{"videoId":"v2"}},"status":{"privacyStatus":"privacyStatusUnspecified"}},
			{"snippet":{"title":"Goroutines","position":3,"resourceId":{"videoId":"v3"}},"status":{"privacyStatus":"unlisted"}}
		]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPlaylistFollowsPages(t *testing.T) {
	srv := fakeYouTube(t)
	client := NewYouTubeClient(srv.URL, "secret", 5*time.Second)

	snapshot, err := client.FetchPlaylist(context.Background(), "PLgoodplaylist")
	require.NoError(t, err)

	assert.Equal(t, "Go in depth", snapshot.Title)
	require.Len(t, snapshot.Videos, 4)
	assert.Equal(t, "v3", snapshot.Videos[3].VideoID)

	available, private := snapshot.Counts()
	assert.Equal(t, 2, available)
	assert.Equal(t, 2, private)
}

func TestFetchPlaylistNotFound(t *testing.T) {
	srv := fakeYouTube(t)
	client := NewYouTubeClient(srv.URL, "secret", 5*time.Second)

	_, err := client.FetchPlaylist(context.Background(), "PLmissingplaylist")
	assert.ErrorIs(t, err, ErrPlaylistNotFound)
}

func TestFetchPlaylistAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded"}}`))
	}))
	defer srv.Close()

	client := NewYouTubeClient(srv.URL, "secret", 5*time.Second)
	_, err := client.FetchPlaylist(context.Background(), "PLgoodplaylist")
	assert.ErrorContains(t, err, "quotaExceeded")
}

func TestFetchPlaylistWithoutKey(t *testing.T) {
	client := NewYouTubeClient("http://127.0.0.1:1", "", time.Second)
	_, err := client.FetchPlaylist(context.Background(), "PLgoodplaylist")
	assert.ErrorIs(t, err, ErrYouTubeDisabled)
}

func TestParsePlaylistID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"PLx0sYbCqOb8TBPRdmBHs5Iftvv9TPboYG", "PLx0sYbCqOb8TBPRdmBHs5Iftvv9TPboYG", false},
		{"https://www.youtube.com/playlist?list=PLx0sYbCqOb8TBPRdmBHs5Iftvv9TPboYG", "PLx0sYbCqOb8TBPRdmBHs5Iftvv9TPboYG", false},
		{"https://youtube.com/watch?v=abc&list=PL_abc-12345", "PL_abc-12345", false},
		{"list=PL_abc-12345", "PL_abc-12345", false},
		{"https://www.youtube.com/watch?v=abc", "", true},
		{"short", "", true},
		{"", "", true},
		{"bad id with spaces", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePlaylistID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPlaylist)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// pagedYouTube serves pages of 50 public videos. The last page has no next token unless endless is set.
func pagedYouTube(t *testing.T, pages int, endless bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/playlists", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"PLlongplaylist","snippet":{"title":"Marathon"}}]}`))
	})
	mux.HandleFunc("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("pageToken"))

		type video struct {
			Snippet map[string]interface{} `json:"snippet"`
			Status  map[string]string      `json:"status"`
		}
		body := map[string]interface{}{}
		items := make([]video, 0, 50)
		for i := 0; i < 50; i++ {
			pos := page*50 + i
			items = append(items, video{
				Snippet: map[string]interface{}{
					"title":      fmt.Sprintf("Lesson %d", pos),
					"position":   pos,
					"resourceId": map[string]string{"videoId": fmt.Sprintf("v%d", pos)},
				},
				Status: map[string]string{"privacyStatus": "public"},
			})
		}
		body["items"] = items
		if endless || page+1 < pages {
			body["nextPageToken"] = strconv.Itoa(page + 1)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPlaylistReadsFullSizePlaylist(t *testing.T) {
	srv := pagedYouTube(t, 100, false)
	client := NewYouTubeClient(srv.URL, "secret", 5*time.Second)

	snapshot, err := client.FetchPlaylist(context.Background(), "PLlongplaylist")
	require.NoError(t, err)

	available, private := snapshot.Counts()
	assert.Equal(t, 5000, available)
	assert.Zero(t, private)
	assert.Equal(t, "v4999", snapshot.Videos[4999].VideoID)
}

func TestFetchPlaylistRefusesToTruncate(t *testing.T) {
	srv := pagedYouTube(t, 0, true)
	client := NewYouTubeClient(srv.URL, "secret", 5*time.Second)

	snapshot, err := client.FetchPlaylist(context.Background(), "PLlongplaylist")
	assert.ErrorIs(t, err, ErrPlaylistTooLong)
	assert.Nil(t, snapshot)
}
