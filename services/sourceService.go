package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"studytrack/apperr"
	"studytrack/logger"
	"studytrack/models"
	"studytrack/repository"
	"studytrack/utils"
)

const sourceTitleMaxLength = 200

// PlaylistFetcher reads a playlist from the video host.
type PlaylistFetcher interface {
	FetchPlaylist(ctx context.Context, playlistID string) (*utils.PlaylistSnapshot, error)
}

// SourceView is a playlist source with the unit total plans are scheduled against.
type SourceView struct {
	models.PlaylistSource
	TotalUnits int `json:"totalUnits"`
}

func newSourceView(source *models.PlaylistSource) *SourceView {
	return &SourceView{PlaylistSource: *source, TotalUnits: source.TotalUnits()}
}

type SourceService struct {
	sources *repository.SourceRepository
	plans   *repository.PlanRepository
	fetcher PlaylistFetcher
	clock   func() time.Time
	log     *logger.Logger
}

func NewSourceService(sources *repository.SourceRepository, plans *repository.PlanRepository, fetcher PlaylistFetcher, clock func() time.Time, log *logger.Logger) *SourceService {
	if clock == nil {
		clock = time.Now
	}
	return &SourceService{sources: sources, plans: plans, fetcher: fetcher, clock: clock, log: log}
}

// CreateManual stores a tracker with an operator-entered unit count.
func (s *SourceService) CreateManual(ctx context.Context, ownerID uint, title string, totalUnits int) (*SourceView, error) {
	title = strings.TrimSpace(title)
	errs := map[string]string{}
	if msg := checkSourceTitle(title); msg != "" {
		errs["title"] = msg
	}
	if totalUnits < models.ManualTotalMin || totalUnits > models.ManualTotalMax {
		errs["totalUnits"] = "Total units must be between 1 and 1000"
	}
	if len(errs) > 0 {
		return nil, apperr.ValidationFields(errs)
	}

	source := &models.PlaylistSource{
		OwnerID:     ownerID,
		Kind:        models.SourceManual,
		Title:       title,
		ManualTotal: totalUnits,
	}
	if err := s.sources.Create(ctx, source); err != nil {
		return nil, err
	}
	s.log.Info("manual tracker created", "sourceId", source.ID, "ownerId", ownerID, "totalUnits", totalUnits)
	return newSourceView(source), nil
}

// CreateFetched reads the playlist from the video host and stores it with its item ledger.
func (s *SourceService) CreateFetched(ctx context.Context, ownerID uint, playlist string) (*SourceView, error) {
	playlistID, err := utils.ParsePlaylistID(playlist)
	if err != nil {
		return nil, apperr.ValidationFields(map[string]string{"playlist": "Playlist must be a YouTube playlist URL or id"})
	}

	snapshot, err := s.fetch(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	syncedAt := s.clock()
	available, private := snapshot.Counts()
	source := &models.PlaylistSource{
		OwnerID:        ownerID,
		Kind:           models.SourceFetched,
		Title:          fetchedTitle(snapshot),
		ExternalID:     playlistID,
		AvailableUnits: available,
		PrivateUnits:   private,
		LastSyncedAt:   &syncedAt,
		Items:          itemsFrom(snapshot, nil),
	}
	if err := s.sources.Create(ctx, source); err != nil {
		return nil, err
	}
	s.log.Info("playlist fetched", "sourceId", source.ID, "playlistId", playlistID, "available", available, "private", private)
	return newSourceView(source), nil
}

// Sync refetches a fetched playlist. Completion flags survive for videos still in the playlist.
func (s *SourceService) Sync(ctx context.Context, ownerID, sourceID uint) (*SourceView, error) {
	source, err := s.load(ctx, ownerID, sourceID, true)
	if err != nil {
		return nil, err
	}
	if source.Kind != models.SourceFetched {
		return nil, apperr.Validation("Only fetched playlists can be synced")
	}

	snapshot, err := s.fetch(ctx, source.ExternalID)
	if err != nil {
		return nil, err
	}

	done := map[string]*time.Time{}
	for _, it := range source.Items {
		if it.IsCompleted {
			done[it.VideoID] = it.CompletedAt
		}
	}
	items := itemsFrom(snapshot, done)

	syncedAt := s.clock()
	source.Title = fetchedTitle(snapshot)
	source.AvailableUnits, source.PrivateUnits = snapshot.Counts()
	source.CompletedCount = countCompleted(items)
	source.LastSyncedAt = &syncedAt
	if err := s.sources.ReplaceItems(ctx, source, items); err != nil {
		return nil, err
	}
	s.log.Info("playlist synced", "sourceId", source.ID, "available", source.AvailableUnits, "completed", source.CompletedCount)
	return newSourceView(source), nil
}

func (s *SourceService) List(ctx context.Context, ownerID uint) ([]SourceView, error) {
	sources, err := s.sources.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]SourceView, 0, len(sources))
	for i := range sources {
		out = append(out, *newSourceView(&sources[i]))
	}
	return out, nil
}

// Get returns the source with its item ledger.
func (s *SourceService) Get(ctx context.Context, ownerID, sourceID uint) (*SourceView, error) {
	source, err := s.load(ctx, ownerID, sourceID, true)
	if err != nil {
		return nil, err
	}
	return newSourceView(source), nil
}

// Delete removes a source that no plan references.
func (s *SourceService) Delete(ctx context.Context, ownerID, sourceID uint) error {
	if _, err := s.load(ctx, ownerID, sourceID, false); err != nil {
		return err
	}
	count, err := s.plans.CountForSource(ctx, sourceID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("Playlist source is used by a study plan")
	}
	if err := s.sources.Delete(ctx, ownerID, sourceID); err != nil {
		return sourceError(err)
	}
	s.log.Info("playlist source deleted", "sourceId", sourceID, "ownerId", ownerID)
	return nil
}

// SetItemCompleted flips one video of a fetched playlist.
func (s *SourceService) SetItemCompleted(ctx context.Context, ownerID, sourceID, itemID uint, done bool) (*SourceView, error) {
	source, err := s.load(ctx, ownerID, sourceID, true)
	if err != nil {
		return nil, err
	}
	if source.Kind != models.SourceFetched {
		return nil, apperr.Validation("Only fetched playlists have items")
	}

	var target *models.PlaylistItem
	for i := range source.Items {
		if source.Items[i].ID == itemID {
			target = &source.Items[i]
			break
		}
	}
	if target == nil {
		return nil, apperr.NotFound("Playlist item not found")
	}
	if target.IsPrivate {
		return nil, apperr.Validation("Private or deleted videos cannot be completed")
	}

	item, err := s.sources.SetItemCompleted(ctx, source, itemID, done, s.clock())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Playlist item not found")
		}
		return nil, err
	}
	*target = *item
	return newSourceView(source), nil
}

// SetManualProgress stores how many units of a manual tracker are done.
func (s *SourceService) SetManualProgress(ctx context.Context, ownerID, sourceID uint, completed int) (*SourceView, error) {
	source, err := s.load(ctx, ownerID, sourceID, false)
	if err != nil {
		return nil, err
	}
	if source.Kind != models.SourceManual {
		return nil, apperr.Validation("Progress can only be set on manual trackers")
	}
	if completed < 0 || completed > source.ManualTotal {
		return nil, apperr.ValidationFields(map[string]string{"completed": "Completed must be between 0 and the tracker total"})
	}

	source.CompletedCount = completed
	if err := s.sources.UpdateCounts(ctx, source); err != nil {
		return nil, err
	}
	return newSourceView(source), nil
}

func (s *SourceService) load(ctx context.Context, ownerID, sourceID uint, withItems bool) (*models.PlaylistSource, error) {
	var (
		source *models.PlaylistSource
		err    error
	)
	if withItems {
		source, err = s.sources.FindWithItems(ctx, ownerID, sourceID)
	} else {
		source, err = s.sources.FindForOwner(ctx, ownerID, sourceID)
	}
	if err != nil {
		return nil, sourceError(err)
	}
	return source, nil
}

func (s *SourceService) fetch(ctx context.Context, playlistID string) (*utils.PlaylistSnapshot, error) {
	if s.fetcher == nil {
		return nil, apperr.Dependency("Playlist fetching is not configured", utils.ErrYouTubeDisabled)
	}
	snapshot, err := s.fetcher.FetchPlaylist(ctx, playlistID)
	switch {
	case err == nil:
		return snapshot, nil
	case errors.Is(err, utils.ErrPlaylistNotFound):
		return nil, apperr.NotFound("Playlist not found on YouTube")
	case errors.Is(err, utils.ErrPlaylistTooLong):
		return nil, apperr.Dependency("Playlist is too long to import", err)
	case errors.Is(err, utils.ErrInvalidPlaylist):
		return nil, apperr.ValidationFields(map[string]string{"playlist": "Playlist must be a YouTube playlist URL or id"})
	default:
		s.log.Warn("playlist fetch failed", "playlistId", playlistID, "error", err)
		return nil, apperr.Dependency("Could not fetch playlist", err)
	}
}

func sourceError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Playlist source not found")
	}
	return err
}

func checkSourceTitle(title string) string {
	n := utf8.RuneCountInString(title)
	if n == 0 {
		return "Title is required"
	}
	if n > sourceTitleMaxLength {
		return "Title must be at most 200 characters"
	}
	return ""
}

func fetchedTitle(snapshot *utils.PlaylistSnapshot) string {
	title := strings.TrimSpace(snapshot.Title)
	if title == "" {
		return snapshot.PlaylistID
	}
	return title
}

// itemsFrom turns a snapshot into ledger rows, carrying over completion for known video ids.
func itemsFrom(snapshot *utils.PlaylistSnapshot, done map[string]*time.Time) []models.PlaylistItem {
	items := make([]models.PlaylistItem, 0, len(snapshot.Videos))
	for _, v := range snapshot.Videos {
		item := models.PlaylistItem{
			Position:  v.Position,
			VideoID:   v.VideoID,
			Title:     v.Title,
			IsPrivate: v.IsPrivate,
		}
		if at, ok := done[v.VideoID]; ok && !v.IsPrivate {
			item.IsCompleted = true
			item.CompletedAt = at
		}
		items = append(items, item)
	}
	return items
}

func countCompleted(items []models.PlaylistItem) int {
	n := 0
	for _, it := range items {
		if it.IsCompleted && !it.IsPrivate {
			n++
		}
	}
	return n
}
