package db

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/niatrack/nia/internal/models"
)

// FeatureRepository stores one JSON document per (user, feature). Save
// shallow-merges the partial update's top-level keys onto the stored
// document; nested objects and arrays are replaced wholesale, matching the
// generic per-feature contract the screens rely on.
type FeatureRepository struct {
	database *gorm.DB
}

func NewFeatureRepository(database *gorm.DB) *FeatureRepository {
	return &FeatureRepository{database: database}
}

func (repo *FeatureRepository) Load(userID uint, feature string, out any) (bool, error) {
	document := models.FeatureDocument{}
	result := repo.database.
		Where("user_id = ? AND feature = ?", userID, feature).
		Limit(1).
		Find(&document)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	if err := json.Unmarshal(document.Data, out); err != nil {
		return false, fmt.Errorf("decode %s document: %w", feature, err)
	}
	return true, nil
}

func (repo *FeatureRepository) Save(userID uint, feature string, partial any) error {
	patch, err := topLevelKeys(partial)
	if err != nil {
		return fmt.Errorf("encode %s update: %w", feature, err)
	}

	return repo.database.Transaction(func(tx *gorm.DB) error {
		document := models.FeatureDocument{}
		result := tx.Where("user_id = ? AND feature = ?", userID, feature).Limit(1).Find(&document)
		if result.Error != nil {
			return result.Error
		}

		merged := map[string]json.RawMessage{}
		if result.RowsAffected > 0 && len(document.Data) > 0 {
			if err := json.Unmarshal(document.Data, &merged); err != nil {
				return fmt.Errorf("decode stored %s document: %w", feature, err)
			}
		}
		for key, value := range patch {
			merged[key] = value
		}

		data, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("encode merged %s document: %w", feature, err)
		}

		row := models.FeatureDocument{
			UserID:    userID,
			Feature:   feature,
			Data:      data,
			UpdatedAt: time.Now(),
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "feature"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).Create(&row).Error
	})
}

func topLevelKeys(partial any) (map[string]json.RawMessage, error) {
	encoded, err := json.Marshal(partial)
	if err != nil {
		return nil, err
	}
	keys := map[string]json.RawMessage{}
	if err := json.Unmarshal(encoded, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}
