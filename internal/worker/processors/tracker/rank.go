package tracker

import (
	"context"

	"gorm.io/gorm"

	"ecomai/internal/logger"
	"ecomai/internal/models"
	"ecomai/internal/queue"
)

// Tracker turns rank movement between the two most recent snapshots of a
// tracked store into winner rows. A product wins when its rank number went
// down; each (store, handle) pair is recorded once.
type Tracker struct {
	db     *gorm.DB
	logger *logger.Logger
}

func New(db *gorm.DB, logger *logger.Logger) *Tracker {
	return &Tracker{db: db, logger: logger}
}

func (t *Tracker) Process(ctx context.Context, payload *queue.RankRisersPayload) error {
	latestID, previousID, err := t.latestSnapshots(payload.StoreID)
	if err != nil {
		return err
	}
	if previousID == "" {
		t.logger.Warn("Store %s: not enough snapshots for rank comparison", payload.StoreID)
		return nil
	}

	var latest, previous []models.TrackedData
	if err := t.db.Where("store_id = ? AND snapshot_id = ?", payload.StoreID, latestID).Find(&latest).Error; err != nil {
		return err
	}
	if err := t.db.Where("store_id = ? AND snapshot_id = ?", payload.StoreID, previousID).Find(&previous).Error; err != nil {
		return err
	}

	previousByHandle := make(map[string]*models.TrackedData, len(previous))
	for i := range previous {
		previousByHandle[previous[i].Handle] = &previous[i]
	}

	var winners []models.TrackedWinner
	for i := range latest {
		item := &latest[i]
		prev, ok := previousByHandle[item.Handle]
		if !ok || prev.CurrentRank == nil || item.CurrentRank == nil {
			continue
		}
		oldRank, newRank := *prev.CurrentRank, *item.CurrentRank
		if newRank >= oldRank {
			continue
		}

		var count int64
		if err := t.db.Model(&models.TrackedWinner{}).
			Where("store_id = ? AND handle = ?", payload.StoreID, item.Handle).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		winners = append(winners, models.TrackedWinner{
			UserID:        payload.UserID,
			StoreID:       payload.StoreID,
			Handle:        item.Handle,
			Title:         item.Title,
			ProductID:     item.ProductID,
			StartRank:     oldRank,
			CurrentRank:   newRank,
			SourceDomain:  item.SourceDomain,
			SourceCountry: item.SourceCountry,
			Status:        "winner",
			Timestamp:     item.Timestamp,
		})
	}

	if len(winners) > 0 {
		if err := t.db.Create(&winners).Error; err != nil {
			return err
		}
		t.logger.Info("Store %s: %d new rank risers", payload.StoreID, len(winners))
	} else {
		t.logger.Debug("Store %s: no new rank risers", payload.StoreID)
	}
	return nil
}

// latestSnapshots returns the two most recent snapshot IDs for a store, in
// newest-first order. The second return is empty when fewer than two exist.
func (t *Tracker) latestSnapshots(storeID string) (string, string, error) {
	var rows []struct {
		SnapshotID string
	}
	err := t.db.Model(&models.TrackedData{}).
		Select("snapshot_id, MAX(timestamp) AS ts").
		Where("store_id = ?", storeID).
		Group("snapshot_id").
		Order("ts DESC").
		Limit(2).
		Scan(&rows).Error
	if err != nil {
		return "", "", err
	}

	switch len(rows) {
	case 0:
		return "", "", nil
	case 1:
		return rows[0].SnapshotID, "", nil
	default:
		return rows[0].SnapshotID, rows[1].SnapshotID, nil
	}
}
