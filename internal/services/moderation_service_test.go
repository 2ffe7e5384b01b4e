package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/storage"
)

func newModerationFixture(t *testing.T) (*ModerationService, storage.Store, *models.User, *models.Memory) {
	t.Helper()
	store := storage.NewMemStore()
	svc := NewModerationService(store, testLogger())
	owner := seedUser(t, store, "owner", models.RoleUser)
	memory := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.0, -75.0)
	return svc, store, owner, memory
}

func seedReporters(t *testing.T, store storage.Store, n int) []*models.User {
	t.Helper()
	reporters := make([]*models.User, n)
	for i := range reporters {
		reporters[i] = seedUser(t, store, fmt.Sprintf("reporter%d", i), models.RoleUser)
	}
	return reporters
}

func TestReportMarksMemoryFlagged(t *testing.T) {
	svc, store, _, memory := newModerationFixture(t)
	reporter := seedUser(t, store, "reporter", models.RoleUser)

	flag, err := svc.Report(context.Background(), memory.ID, reporter.ID, "spam")
	require.NoError(t, err)
	assert.Equal(t, memory.ID, flag.MemoryID)
	assert.Equal(t, reporter.ID, flag.ReporterID)
	assert.False(t, flag.Resolved)

	got, err := store.GetMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFlagged)
	assert.Equal(t, models.VisibilityPublic, got.Visibility, "one flag must not change visibility")
}

func TestReportFifthFlagHidesMemory(t *testing.T) {
	svc, store, _, memory := newModerationFixture(t)
	reporters := seedReporters(t, store, 5)

	for i := 0; i < 5; i++ {
		_, err := svc.Report(context.Background(), memory.ID, reporters[i].ID, "spam")
		require.NoError(t, err, "report %d should be accepted", i+1)
	}

	got, err := store.GetMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFlagged)
	assert.Equal(t, models.VisibilityPrivate, got.Visibility)
}

func TestReportOverLimitRejectsAndReassertsHidden(t *testing.T) {
	svc, store, _, memory := newModerationFixture(t)
	reporters := seedReporters(t, store, 6)

	for i := 0; i < 5; i++ {
		_, err := svc.Report(context.Background(), memory.ID, reporters[i].ID, "spam")
		require.NoError(t, err)
	}

	// Moderator makes it public again without clearing flags, then another
	// over-limit report arrives. The forced-hide side effect must be
	// re-applied even though the report fails.
	got, err := store.GetMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	got.Visibility = models.VisibilityPublic
	require.NoError(t, store.SaveMemory(context.Background(), got))

	_, err = svc.Report(context.Background(), memory.ID, reporters[5].ID, "spam")
	assert.ErrorIs(t, err, ErrFlagLimitExceeded)

	got, err = store.GetMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPrivate, got.Visibility)
	assert.True(t, got.IsFlagged)

	count, err := store.CountFlagsByMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count, "rejected report must not add a flag")
}

func TestReportCountsResolvedFlagsTowardLimit(t *testing.T) {
	svc, store, _, memory := newModerationFixture(t)
	reporters := seedReporters(t, store, 6)

	var flagIDs []string
	for i := 0; i < 5; i++ {
		flag, err := svc.Report(context.Background(), memory.ID, reporters[i].ID, "spam")
		require.NoError(t, err)
		flagIDs = append(flagIDs, flag.ID)
	}
	for _, id := range flagIDs {
		require.NoError(t, svc.Resolve(context.Background(), id))
	}

	// All flags resolved, but the lifetime count still gates new reports.
	_, err := svc.Report(context.Background(), memory.ID, reporters[5].ID, "spam")
	assert.ErrorIs(t, err, ErrFlagLimitExceeded)
}

func TestResolveClearsFlaggedWhenLastUnresolvedFlagResolves(t *testing.T) {
	svc, store, _, memory := newModerationFixture(t)
	reporters := seedReporters(t, store, 2)

	first, err := svc.Report(context.Background(), memory.ID, reporters[0].ID, "spam")
	require.NoError(t, err)
	second, err := svc.Report(context.Background(), memory.ID, reporters[1].ID, "abuse")
	require.NoError(t, err)

	require.NoError(t, svc.Resolve(context.Background(), first.ID))
	got, err := store.GetMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFlagged, "one unresolved flag remains")

	require.NoError(t, svc.Resolve(context.Background(), second.ID))
	got, err = store.GetMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFlagged)
}

func TestResolveNeverRestoresVisibility(t *testing.T) {
	svc, store, _, memory := newModerationFixture(t)
	reporters := seedReporters(t, store, 5)

	var flagIDs []string
	for i := 0; i < 5; i++ {
		flag, err := svc.Report(context.Background(), memory.ID, reporters[i].ID, "spam")
		require.NoError(t, err)
		flagIDs = append(flagIDs, flag.ID)
	}
	for _, id := range flagIDs {
		require.NoError(t, svc.Resolve(context.Background(), id))
	}

	got, err := store.GetMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFlagged)
	assert.Equal(t, models.VisibilityPrivate, got.Visibility,
		"un-hiding takes an explicit moderator approve")
}

func TestApproveClearsFlaggedOnly(t *testing.T) {
	svc, store, _, memory := newModerationFixture(t)
	reporter := seedUser(t, store, "reporter", models.RoleUser)

	_, err := svc.Report(context.Background(), memory.ID, reporter.ID, "spam")
	require.NoError(t, err)

	require.NoError(t, svc.Approve(context.Background(), memory.ID))
	got, err := store.GetMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFlagged)
	assert.Equal(t, models.VisibilityPublic, got.Visibility)
}

func TestHideForcesPrivate(t *testing.T) {
	svc, store, _, memory := newModerationFixture(t)

	require.NoError(t, svc.Hide(context.Background(), memory.ID))
	got, err := store.GetMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPrivate, got.Visibility)
	assert.True(t, got.IsFlagged)
}

func TestReportUnknownMemoryAndReporter(t *testing.T) {
	svc, store, _, memory := newModerationFixture(t)
	reporter := seedUser(t, store, "reporter", models.RoleUser)

	_, err := svc.Report(context.Background(), "no-such-memory", reporter.ID, "spam")
	assert.ErrorIs(t, err, ErrMemoryNotFound)

	_, err = svc.Report(context.Background(), memory.ID, "no-such-user", "spam")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConcurrentReportsNeverExceedThreshold(t *testing.T) {
	svc, store, _, memory := newModerationFixture(t)
	reporters := seedReporters(t, store, 20)

	var wg sync.WaitGroup
	for _, r := range reporters {
		wg.Add(1)
		go func(reporterID string) {
			defer wg.Done()
			_, _ = svc.Report(context.Background(), memory.ID, reporterID, "spam")
		}(r.ID)
	}
	wg.Wait()

	count, err := store.CountFlagsByMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultFlagThreshold, count)

	got, err := store.GetMemory(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPrivate, got.Visibility)
}

func TestFlagStatus(t *testing.T) {
	svc, store, _, memory := newModerationFixture(t)
	reporters := seedReporters(t, store, 2)

	for _, r := range reporters {
		_, err := svc.Report(context.Background(), memory.ID, r.ID, "spam")
		require.NoError(t, err)
	}

	status, err := svc.FlagStatus(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.Equal(t, memory.ID, status.MemoryID)
	assert.True(t, status.IsFlagged)
	assert.EqualValues(t, 2, status.FlagCount)
}
