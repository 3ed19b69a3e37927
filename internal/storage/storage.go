package storage

import (
	"context"

	"github.com/xaenox/recycle-bot/internal/models"
)

type Storage interface {
	SaveAnalysis(ctx context.Context, analysis *models.Analysis) error
	// GetUserAnalyses returns analyses newest first
	GetUserAnalyses(ctx context.Context, userID int64, limit, offset int) ([]*models.Analysis, error)
	GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error)
	Close() error
}
