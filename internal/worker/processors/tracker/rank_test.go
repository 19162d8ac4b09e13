package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ecomai/internal/logger"
	"ecomai/internal/models"
	"ecomai/internal/queue"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TrackedData{}, &models.TrackedWinner{}))
	return db
}

func intPtr(v int) *int { return &v }

func seedSnapshot(t *testing.T, db *gorm.DB, storeID, snapshotID string, at time.Time, ranks map[string]int) {
	t.Helper()
	for handle, rank := range ranks {
		require.NoError(t, db.Create(&models.TrackedData{
			StoreID:     storeID,
			SnapshotID:  snapshotID,
			Handle:      handle,
			Title:       handle,
			CurrentRank: intPtr(rank),
			Timestamp:   at,
		}).Error)
	}
}

func TestProcessFindsRisers(t *testing.T) {
	db := testDB(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	seedSnapshot(t, db, "s1", "snap-1", base, map[string]int{
		"red-mug":   10,
		"blue-bowl": 3,
		"old-vase":  7,
	})
	seedSnapshot(t, db, "s1", "snap-2", base.Add(24*time.Hour), map[string]int{
		"red-mug":   4, // rose
		"blue-bowl": 5, // fell
		"new-plate": 1, // no previous rank
	})

	tr := New(db, logger.New("error"))
	require.NoError(t, tr.Process(context.Background(), &queue.RankRisersPayload{StoreID: "s1", UserID: "u1"}))

	var winners []models.TrackedWinner
	require.NoError(t, db.Find(&winners).Error)
	require.Len(t, winners, 1)
	assert.Equal(t, "red-mug", winners[0].Handle)
	assert.Equal(t, 10, winners[0].StartRank)
	assert.Equal(t, 4, winners[0].CurrentRank)
	assert.Equal(t, "winner", winners[0].Status)
	assert.Equal(t, "u1", winners[0].UserID)
}

func TestProcessSkipsKnownWinners(t *testing.T) {
	db := testDB(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	seedSnapshot(t, db, "s1", "snap-1", base, map[string]int{"red-mug": 10})
	seedSnapshot(t, db, "s1", "snap-2", base.Add(time.Hour), map[string]int{"red-mug": 4})

	require.NoError(t, db.Create(&models.TrackedWinner{
		UserID:      "u1",
		StoreID:     "s1",
		Handle:      "red-mug",
		StartRank:   20,
		CurrentRank: 10,
	}).Error)

	tr := New(db, logger.New("error"))
	require.NoError(t, tr.Process(context.Background(), &queue.RankRisersPayload{StoreID: "s1", UserID: "u1"}))

	var count int64
	require.NoError(t, db.Model(&models.TrackedWinner{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProcessNeedsTwoSnapshots(t *testing.T) {
	db := testDB(t)
	seedSnapshot(t, db, "s1", "snap-1", time.Now(), map[string]int{"red-mug": 10})

	tr := New(db, logger.New("error"))
	require.NoError(t, tr.Process(context.Background(), &queue.RankRisersPayload{StoreID: "s1", UserID: "u1"}))

	var count int64
	require.NoError(t, db.Model(&models.TrackedWinner{}).Count(&count).Error)
	assert.Zero(t, count)
}
