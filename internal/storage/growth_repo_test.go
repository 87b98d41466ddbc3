package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGrowthInsertDuplicateKey(t *testing.T) {
	db, ctx := openTestDB(t)
	repo := NewGrowthRepo(db)

	rec := GrowthRecordRow{
		UID:            "u1",
		Attribute:      "wisdom",
		EventKind:      "reflection_entry",
		Amount:         8,
		IdempotencyKey: "refl-1",
		CreatedAt:      time.Now().UTC(),
	}

	id, inserted, err := repo.Insert(ctx, rec)
	require.NoError(t, err)
	require.True(t, inserted)
	require.NotZero(t, id)

	// The same key is swallowed without error or a second row.
	_, inserted, err = repo.Insert(ctx, rec)
	require.NoError(t, err)
	require.False(t, inserted)

	recs, err := repo.ListByUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestGrowthGetByKey(t *testing.T) {
	db, ctx := openTestDB(t)
	repo := NewGrowthRepo(db)

	missing, err := repo.GetByKey(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	_, _, err = repo.Insert(ctx, GrowthRecordRow{
		UID:            "u1",
		Attribute:      "courage",
		EventKind:      "challenge_overcome",
		Amount:         8,
		IdempotencyKey: "ch-1",
		Context:        "spoke up in the meeting",
		CreatedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)

	got, err := repo.GetByKey(ctx, "ch-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "courage", got.Attribute)
	require.Equal(t, 8, got.Amount)
	require.Equal(t, "spoke up in the meeting", got.Context)
}

func TestGrowthListNewestFirst(t *testing.T) {
	db, ctx := openTestDB(t)
	repo := NewGrowthRepo(db)

	base := time.Now().UTC().Add(-time.Hour)
	keys := []string{"a", "b", "c"}
	for i, k := range keys {
		_, _, err := repo.Insert(ctx, GrowthRecordRow{
			UID:            "u1",
			Attribute:      "wisdom",
			EventKind:      "wisdom_gained",
			Amount:         7,
			IdempotencyKey: k,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recs, err := repo.ListByUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "c", recs[0].IdempotencyKey)
	require.Equal(t, "b", recs[1].IdempotencyKey)
}

func TestTaskMarkCompletedClaimsOnce(t *testing.T) {
	db, ctx := openTestDB(t)
	profiles := NewProfileRepo(db)
	tasks := NewTaskRepo(db)

	_, err := profiles.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	id, err := tasks.Insert(ctx, TaskInsert{
		UID:        "u1",
		TaskType:   "routine",
		Title:      "stretch",
		Difficulty: 1,
		Status:     "pending",
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	claimed, err := tasks.MarkCompleted(ctx, id, now, 10, nil)
	require.NoError(t, err)
	require.True(t, claimed)

	// The frozen award survives a second attempt with different numbers.
	claimed, err = tasks.MarkCompleted(ctx, id, now, 99, nil)
	require.NoError(t, err)
	require.False(t, claimed)

	got, err := tasks.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "completed", got.Status)
	require.Equal(t, 10, got.XPEarned)
	require.NotNil(t, got.CompletedAt)
}
