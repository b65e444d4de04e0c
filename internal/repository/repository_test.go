package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
	"github.com/vladimiradmaev/nutriscan/internal/storage"
)

type failingStore struct {
	storage.Store
	failGet bool
	failSet bool
}

func (s *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, errors.New("backend down")
	}
	return s.Store.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errors.New("quota exceeded")
	}
	return s.Store.Set(ctx, key, value)
}

func entry(i int, ts int64) domain.HistoryEntry {
	return domain.HistoryEntry{
		NutritionRecord: domain.NutritionRecord{ProductName: fmt.Sprintf("item-%d", i), HealthScore: 5},
		ID:              fmt.Sprintf("id-%d", i),
		Timestamp:       ts,
	}
}

func TestHistoryAppendIsNewestFirstAndBounded(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewHistoryRepository(store, nil)
	require.NoError(t, repo.Load(ctx))
	assert.Empty(t, repo.All())

	for i := 1; i <= MaxHistoryEntries+1; i++ {
		require.NoError(t, repo.Append(ctx, entry(i, int64(i))))
	}

	all := repo.All()
	require.Len(t, all, MaxHistoryEntries)
	assert.Equal(t, "id-21", all[0].ID)
	assert.Equal(t, "id-2", all[len(all)-1].ID)

	_, found := repo.Find("id-1")
	assert.False(t, found, "oldest entry is evicted")

	got, found := repo.Find("id-10")
	require.True(t, found)
	assert.Equal(t, "item-10", got.ProductName)
}

func TestHistoryPersistsAcrossLoads(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	first := NewHistoryRepository(store, nil)
	require.NoError(t, first.Load(ctx))
	require.NoError(t, first.Append(ctx, entry(1, 100)))
	require.NoError(t, first.Append(ctx, entry(2, 200)))

	raw, found, err := store.Get(ctx, HistoryKey)
	require.NoError(t, err)
	require.True(t, found)
	var persisted []domain.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Len(t, persisted, 2)

	second := NewHistoryRepository(store, nil)
	require.NoError(t, second.Load(ctx))
	all := second.All()
	require.Len(t, all, 2)
	assert.Equal(t, "id-2", all[0].ID)
}

func TestHistoryCorruptValueLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, HistoryKey, "{not json"))

	repo := NewHistoryRepository(store, nil)
	require.NoError(t, repo.Load(ctx))
	assert.Empty(t, repo.All())
}

func TestHistoryLoadReportsBackendFailure(t *testing.T) {
	repo := NewHistoryRepository(&failingStore{Store: storage.NewMemoryStore(), failGet: true}, nil)
	assert.Error(t, repo.Load(context.Background()))
}

func TestHistoryAppendKeepsEntryWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(&failingStore{Store: storage.NewMemoryStore(), failSet: true}, nil)

	err := repo.Append(ctx, entry(1, 1))
	require.Error(t, err)
	assert.Len(t, repo.All(), 1)
}

func TestHistorySinceIsStrict(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(storage.NewMemoryStore(), nil)
	require.NoError(t, repo.Load(ctx))

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, entry(1, now.Add(-25*time.Hour).UnixMilli())))
	require.NoError(t, repo.Append(ctx, entry(2, now.Add(-24*time.Hour).UnixMilli())))
	require.NoError(t, repo.Append(ctx, entry(3, now.Add(-2*time.Hour).UnixMilli())))

	got := repo.Since(now.Add(-24 * time.Hour))
	require.Len(t, got, 1)
	assert.Equal(t, "id-3", got[0].ID)
}

func TestHistoryAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(storage.NewMemoryStore(), nil)
	e := entry(1, 1)
	e.Pros = []string{"fiber"}
	require.NoError(t, repo.Append(ctx, e))

	all := repo.All()
	all[0].Pros[0] = "changed"
	all[0].ProductName = "changed"

	again := repo.All()
	assert.Equal(t, "fiber", again[0].Pros[0])
	assert.Equal(t, "item-1", again[0].ProductName)
}

func TestPreferencesDefaultsAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	prefs := NewPreferencesRepository(store, nil)

	assert.Equal(t, domain.DefaultGoal, prefs.Goal(ctx))
	assert.Equal(t, domain.ThemeLight, prefs.Theme(ctx))

	require.NoError(t, prefs.SetGoal(ctx, domain.GoalWeightLoss))
	require.NoError(t, prefs.SetTheme(ctx, domain.ThemeDark))

	raw, _, err := store.Get(ctx, GoalKey)
	require.NoError(t, err)
	assert.Equal(t, "Weight Loss", raw)

	reopened := NewPreferencesRepository(store, nil)
	assert.Equal(t, domain.GoalWeightLoss, reopened.Goal(ctx))
	assert.Equal(t, domain.ThemeDark, reopened.Theme(ctx))
}

func TestPreferencesInvalidValuesFallBack(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, GoalKey, "Eat Everything"))
	require.NoError(t, store.Set(ctx, ThemeKey, "sepia"))

	prefs := NewPreferencesRepository(store, nil)
	assert.Equal(t, domain.DefaultGoal, prefs.Goal(ctx))
	assert.Equal(t, domain.ThemeLight, prefs.Theme(ctx))

	assert.Error(t, prefs.SetGoal(ctx, domain.Goal("Eat Everything")))
	assert.Error(t, prefs.SetTheme(ctx, domain.Theme("sepia")))
}

func TestPreferencesBackendFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	prefs := NewPreferencesRepository(&failingStore{Store: storage.NewMemoryStore(), failGet: true, failSet: true}, nil)

	assert.Equal(t, domain.DefaultGoal, prefs.Goal(ctx))
	assert.Error(t, prefs.SetGoal(ctx, domain.GoalMuscleBuild))
}
