package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack/apperr"
	"studytrack/models"
	"studytrack/utils"
)

type fakeFetcher struct {
	snapshots map[string]*utils.PlaylistSnapshot
	err       error
}

func (f *fakeFetcher) FetchPlaylist(ctx context.Context, playlistID string) (*utils.PlaylistSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.snapshots[playlistID]
	if !ok {
		return nil, utils.ErrPlaylistNotFound
	}
	return s, nil
}

const playlistID = "PLx0sYbCqOb8TBPRdmBHs5Iftvv9TPboYG"

func goPlaylist() *utils.PlaylistSnapshot {
	return &utils.PlaylistSnapshot{
		PlaylistID: playlistID,
		Title:      "Go in depth",
		Videos: []utils.PlaylistVideo{
			{Position: 0, VideoID: "v0", Title: "Intro"},
			{Position: 1, VideoID: "v1", Title: "Private video", IsPrivate: true},
			{Position: 2, VideoID: "v2", Title: "Channels"},
			{Position: 3, VideoID: "v3", Title: "Generics"},
		},
	}
}

func TestCreateManualBounds(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	for _, total := range []int{0, 1001, -5} {
		_, err := env.sources.CreateManual(ctx, env.owner.ID, "Course", total)
		assert.True(t, apperr.IsValidation(err), "total %d", total)
	}

	_, err := env.sources.CreateManual(ctx, env.owner.ID, "", 10)
	assert.True(t, apperr.IsValidation(err))

	for _, total := range []int{1, 1000} {
		src, err := env.sources.CreateManual(ctx, env.owner.ID, "Course", total)
		require.NoError(t, err)
		assert.Equal(t, total, src.TotalUnits)
		assert.Equal(t, models.SourceManual, src.Kind)
	}
}

func TestCreateFetchedCountsAvailableVideos(t *testing.T) {
	fetcher := &fakeFetcher{snapshots: map[string]*utils.PlaylistSnapshot{playlistID: goPlaylist()}}
	env := newTestEnv(t, fetcher)
	ctx := context.Background()

	src, err := env.sources.CreateFetched(ctx, env.owner.ID, "https://www.youtube.com/playlist?list="+playlistID)
	require.NoError(t, err)
	assert.Equal(t, models.SourceFetched, src.Kind)
	assert.Equal(t, "Go in depth", src.Title)
	assert.Equal(t, 3, src.AvailableUnits)
	assert.Equal(t, 1, src.PrivateUnits)
	assert.Equal(t, 3, src.TotalUnits)
	assert.NotNil(t, src.LastSyncedAt)

	plan := env.createPlan(t, src.ID, day(0), day(3))
	assert.Equal(t, 1, plan.DailyAllocation)
	assert.Equal(t, 3, plan.TotalUnits)
}

func TestCreateFetchedErrors(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv(t, &fakeFetcher{snapshots: map[string]*utils.PlaylistSnapshot{}})
	_, err := env.sources.CreateFetched(ctx, env.owner.ID, "not a playlist")
	assert.True(t, apperr.IsValidation(err))

	_, err = env.sources.CreateFetched(ctx, env.owner.ID, playlistID)
	assert.True(t, apperr.IsNotFound(err))

	down := newTestEnv(t, &fakeFetcher{err: errors.New("youtube /playlists: status 500")})
	_, err = down.sources.CreateFetched(ctx, down.owner.ID, playlistID)
	assert.True(t, apperr.IsDependency(err))

	long := newTestEnv(t, &fakeFetcher{err: fmt.Errorf("youtube /playlistItems: %w", utils.ErrPlaylistTooLong)})
	_, err = long.sources.CreateFetched(ctx, long.owner.ID, playlistID)
	assert.True(t, apperr.IsDependency(err))
	assert.ErrorIs(t, err, utils.ErrPlaylistTooLong)

	disabled := newTestEnv(t, nil)
	_, err = disabled.sources.CreateFetched(ctx, disabled.owner.ID, playlistID)
	assert.True(t, apperr.IsDependency(err))
	assert.ErrorIs(t, err, utils.ErrYouTubeDisabled)
}

func TestItemLedgerAndSync(t *testing.T) {
	snapshot := goPlaylist()
	fetcher := &fakeFetcher{snapshots: map[string]*utils.PlaylistSnapshot{playlistID: snapshot}}
	env := newTestEnv(t, fetcher)
	ctx := context.Background()

	src, err := env.sources.CreateFetched(ctx, env.owner.ID, playlistID)
	require.NoError(t, err)
	src, err = env.sources.Get(ctx, env.owner.ID, src.ID)
	require.NoError(t, err)
	require.Len(t, src.Items, 4)

	view, err := env.sources.SetItemCompleted(ctx, env.owner.ID, src.ID, src.Items[2].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CompletedCount)
	assert.True(t, view.Items[2].IsCompleted)

	_, err = env.sources.SetItemCompleted(ctx, env.owner.ID, src.ID, src.Items[1].ID, true)
	assert.True(t, apperr.IsValidation(err), "private video")

	_, err = env.sources.SetItemCompleted(ctx, env.owner.ID, src.ID, 9999, true)
	assert.True(t, apperr.IsNotFound(err))

	// v0 disappears, v4 is added; v2 keeps its completion
	fetcher.snapshots[playlistID] = &utils.PlaylistSnapshot{
		PlaylistID: playlistID,
		Title:      "Go in depth (2nd ed.)",
		Videos: []utils.PlaylistVideo{
			{Position: 0, VideoID: "v2", Title: "Channels"},
			{Position: 1, VideoID: "v3", Title: "Generics"},
			{Position: 2, VideoID: "v4", Title: "Fuzzing"},
		},
	}
	synced, err := env.sources.Sync(ctx, env.owner.ID, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go in depth (2nd ed.)", synced.Title)
	assert.Equal(t, 3, synced.AvailableUnits)
	assert.Equal(t, 0, synced.PrivateUnits)
	assert.Equal(t, 1, synced.CompletedCount)

	reloaded, err := env.sources.Get(ctx, env.owner.ID, src.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 3)
	assert.True(t, reloaded.Items[0].IsCompleted)
	assert.False(t, reloaded.Items[2].IsCompleted)
}

func TestManualProgress(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	src := env.manualSource(t, 10)

	view, err := env.sources.SetManualProgress(ctx, env.owner.ID, src.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.CompletedCount)

	_, err = env.sources.SetManualProgress(ctx, env.owner.ID, src.ID, 11)
	assert.True(t, apperr.IsValidation(err))

	_, err = env.sources.Sync(ctx, env.owner.ID, src.ID)
	assert.True(t, apperr.IsValidation(err), "manual trackers cannot be synced")

	_, err = env.sources.SetItemCompleted(ctx, env.owner.ID, src.ID, 1, true)
	assert.True(t, apperr.IsValidation(err))
}

func TestDeleteSourceInUse(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	src := env.manualSource(t, 10)
	plan := env.createPlan(t, src.ID, day(0), day(2))

	assert.True(t, apperr.IsConflict(env.sources.Delete(ctx, env.owner.ID, src.ID)))

	require.NoError(t, env.plans.DeletePlan(ctx, env.owner.ID, plan.ID))
	require.NoError(t, env.sources.Delete(ctx, env.owner.ID, src.ID))
	assert.True(t, apperr.IsNotFound(env.sources.Delete(ctx, env.owner.ID, src.ID)))

	list, err := env.sources.List(ctx, env.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReminderDigestsAreReadOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	src := env.manualSource(t, 20)
	running := env.createPlan(t, src.ID, day(0), day(4))
	env.createPlan(t, src.ID, day(3), day(6))

	env.setToday(9)
	digests, err := env.digest.ReminderDigests(ctx)
	require.NoError(t, err)
	require.Len(t, digests, 1)
	assert.Equal(t, "asha@example.com", digests[0].Email)
	require.Len(t, digests[0].Lines, 2)
	assert.Equal(t, 5, digests[0].Lines[0].DailyAllocation)
	assert.Equal(t, 0, digests[0].Lines[0].RemainingDays)

	stored, err := env.plans.GetPlan(ctx, env.owner.ID, running.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.DailyAllocation)

	env.setToday(0)
	digests, err = env.digest.ReminderDigests(ctx)
	require.NoError(t, err)
	require.Len(t, digests, 1)
	assert.Len(t, digests[0].Lines, 1, "plans that start later are left out")
}
