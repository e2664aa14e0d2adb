package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inkwell/internal/models"
)

// DownloadHistoryRepository persists which local model artifacts have
// ever completed a download. The set is append-only; reconciliation may
// flip Present but never removes a row.
type DownloadHistoryRepository interface {
	List(ctx context.Context) ([]models.DownloadedModel, error)
	Append(ctx context.Context, modelID string) (*models.DownloadedModel, error)
	MarkPresent(ctx context.Context, modelID string, present bool) error
}

type downloadHistoryRepository struct {
	db *gorm.DB
}

func NewDownloadHistoryRepository(db *gorm.DB) DownloadHistoryRepository {
	return &downloadHistoryRepository{db: db}
}

func (r *downloadHistoryRepository) List(ctx context.Context) ([]models.DownloadedModel, error) {
	var rows []models.DownloadedModel
	if err := r.db.WithContext(ctx).Order("created_at, model_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *downloadHistoryRepository) Append(ctx context.Context, modelID string) (*models.DownloadedModel, error) {
	if modelID == "" {
		return nil, fmt.Errorf("model id is required")
	}
	row := models.DownloadedModel{ModelID: modelID, Present: true}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"present":    true,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *downloadHistoryRepository) MarkPresent(ctx context.Context, modelID string, present bool) error {
	if modelID == "" {
		return fmt.Errorf("model id is required")
	}
	return r.db.WithContext(ctx).Model(&models.DownloadedModel{}).
		Where("model_id = ?", modelID).
		Update("present", present).Error
}
