package utils

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrYouTubeDisabled  = errors.New("youtube api key is not configured")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrInvalidPlaylist  = errors.New("invalid playlist id or url")
	ErrPlaylistTooLong  = errors.New("playlist has more items than can be read")
)

// YouTube caps playlists at 5000 items.
const (
	playlistPageSize = 50
	playlistMaxPages = 100
)

var playlistIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{10,64}$`)

// PlaylistVideo is one entry of a fetched playlist.
type PlaylistVideo struct {
	Position  int
	VideoID   string
	Title     string
	IsPrivate bool
}

// PlaylistSnapshot is a playlist as read from the video host.
type PlaylistSnapshot struct {
	PlaylistID string
	Title      string
	Videos     []PlaylistVideo
}

// Counts splits the playlist into available and private (or deleted) videos.
func (s *PlaylistSnapshot) Counts() (available, private int) {
	for _, v := range s.Videos {
		if v.IsPrivate {
			private++
		} else {
			available++
		}
	}
	return available, private
}

// YouTubeClient reads playlists from the YouTube Data API v3.
type YouTubeClient struct {
	client *resty.Client
	apiKey string
}

func NewYouTubeClient(baseURL, apiKey string, timeout time.Duration) *YouTubeClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(300 * time.Millisecond).
		SetHeader("Accept", "application/json")

	return &YouTubeClient{client: client, apiKey: apiKey}
}

type youtubeError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type playlistListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title      string `json:"title"`
			Position   int    `json:"position"`
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
		Status struct {
			PrivacyStatus string `json:"privacyStatus"`
		} `json:"status"`
	} `json:"items"`
}

// FetchPlaylist loads the playlist title and every item, following page tokens.
// A playlist that still has pages after playlistMaxPages is an error rather than a partial count.
func (y *YouTubeClient) FetchPlaylist(ctx context.Context, playlistID string) (*PlaylistSnapshot, error) {
	if y.apiKey == "" {
		return nil, ErrYouTubeDisabled
	}

	var meta playlistListResponse
	if err := y.get(ctx, "/playlists", map[string]string{
		"part": "snippet",
		"id":   playlistID,
	}, &meta); err != nil {
		return nil, err
	}
	if len(meta.Items) == 0 {
		return nil, ErrPlaylistNotFound
	}

	snapshot := &PlaylistSnapshot{PlaylistID: playlistID, Title: meta.Items[0].Snippet.Title}

	pageToken := ""
	for page := 0; ; page++ {
		if page == playlistMaxPages {
			return nil, fmt.Errorf("youtube /playlistItems: %w: stopped after %d pages", ErrPlaylistTooLong, playlistMaxPages)
		}
		params := map[string]string{
			"part":       "snippet,status",
			"playlistId": playlistID,
			"maxResults": strconv.Itoa(playlistPageSize),
		}
		if pageToken != "" {
			params["pageToken"] = pageToken
		}

		var items playlistItemsResponse
		if err := y.get(ctx, "/playlistItems", params, &items); err != nil {
			return nil, err
		}

		for _, it := range items.Items {
			snapshot.Videos = append(snapshot.Videos, PlaylistVideo{
				Position:  it.Snippet.Position,
				VideoID:   it.Snippet.ResourceID.VideoID,
				Title:     it.Snippet.Title,
				IsPrivate: isUnavailable(it.Status.PrivacyStatus, it.Snippet.Title),
			})
		}

		if items.NextPageToken == "" {
			break
		}
		pageToken = items.NextPageToken
	}

	return snapshot, nil
}

func (y *YouTubeClient) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	var apiErr youtubeError
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("key", y.apiKey).
		SetResult(out).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("youtube %s: %w", path, err)
	}
	if resp.StatusCode() == 404 {
		return ErrPlaylistNotFound
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return fmt.Errorf("youtube %s: status %d: %s", path, resp.StatusCode(), msg)
	}
	return nil
}

// isUnavailable reports videos YouTube still lists but nobody can watch.
func isUnavailable(privacyStatus, title string) bool {
	switch strings.ToLower(privacyStatus) {
	case "private", "privacystatusunspecified":
		return true
	}
	switch title {
	case "Private video", "Deleted video":
		return true
	}
	return false
}

// ParsePlaylistID accepts a bare playlist id or any YouTube URL carrying a list parameter.
func ParsePlaylistID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrInvalidPlaylist
	}

	if strings.Contains(input, "://") || strings.Contains(input, "list=") {
		raw := input
		if !strings.Contains(raw, "://") {
			raw = "https://www.youtube.com/playlist?" + strings.TrimPrefix(raw, "?")
		}
		u, err := url.Parse(raw)
		if err != nil {
			return "", ErrInvalidPlaylist
		}
		input = u.Query().Get("list")
	}

	if !playlistIDPattern.MatchString(input) {
		return "", ErrInvalidPlaylist
	}
	return input, nil
}
