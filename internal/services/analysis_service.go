package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/recycle-bot/internal/advisor"
	"github.com/xaenox/recycle-bot/internal/classifier"
	"github.com/xaenox/recycle-bot/internal/imageinput"
	"github.com/xaenox/recycle-bot/internal/models"
	"github.com/xaenox/recycle-bot/internal/storage"
	"go.uber.org/zap"
)

// ErrClassification wraps failures of the image classifier.
var ErrClassification = errors.New("classification failed")

// ImageRequest is one image to analyze. Caption is used as a fallback label
// source when the image classifier fails.
type ImageRequest struct {
	UserID  int64
	Source  models.Source
	Image   []byte
	Caption string
}

type AnalysisService struct {
	images        classifier.ImageClassifier
	captions      *classifier.CaptionClassifier
	storage       storage.Storage
	maxImageBytes int64
	logger        *zap.Logger
	now           func() time.Time
}

func NewAnalysisService(images classifier.ImageClassifier, captions *classifier.CaptionClassifier, store storage.Storage, maxImageBytes int64, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		images:        images,
		captions:      captions,
		storage:       store,
		maxImageBytes: maxImageBytes,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *AnalysisService) MaxImageBytes() int64 {
	if s.maxImageBytes <= 0 {
		return imageinput.DefaultMaxBytes
	}
	return s.maxImageBytes
}

// AnalyzeImage validates, classifies and advises on an image and records the
// result. Validation errors are returned unwrapped from imageinput so callers
// can match them with errors.Is.
func (s *AnalysisService) AnalyzeImage(ctx context.Context, req ImageRequest) (*models.Analysis, error) {
	mime, err := imageinput.Validate(req.Image, s.MaxImageBytes())
	if err != nil {
		return nil, err
	}

	predictions, err := s.images.Classify(ctx, req.Image, mime)
	if err != nil {
		fallback := s.captions.ClassifyText(req.Caption)
		if len(fallback) == 0 {
			return nil, fmt.Errorf("%w: %w", ErrClassification, err)
		}
		s.logger.Warn("Image classifier failed, using caption",
			zap.Error(err),
			zap.Int64("user_id", req.UserID))
		predictions = fallback
	}

	return s.record(ctx, req.UserID, req.Source, predictions)
}

// AnalyzeText advises on a typed description instead of an image.
func (s *AnalysisService) AnalyzeText(ctx context.Context, userID int64, text string) (*models.Analysis, error) {
	return s.record(ctx, userID, models.TelegramText, s.captions.ClassifyText(text))
}

func (s *AnalysisService) record(ctx context.Context, userID int64, source models.Source, predictions []models.Prediction) (*models.Analysis, error) {
	advice := advisor.Advise(predictions)
	analysis := &models.Analysis{
		ID:                  uuid.New().String(),
		UserID:              userID,
		Source:              source,
		Predictions:         predictions,
		Categories:          advice.Categories,
		Recommendation:      advice.Recommendation,
		DisposalInstruction: advice.DisposalInstruction,
		CreatedAt:           s.now().UTC(),
	}

	if err := s.storage.SaveAnalysis(ctx, analysis); err != nil {
		// the advice is still useful to the caller
		s.logger.Error("Failed to save analysis",
			zap.Error(err),
			zap.String("analysis_id", analysis.ID),
			zap.Int64("user_id", userID))
	}

	s.logger.Info("Analysis complete",
		zap.String("analysis_id", analysis.ID),
		zap.Int64("user_id", userID),
		zap.String("source", string(source)),
		zap.String("top_label", analysis.TopLabel()),
		zap.Bool("organic", advice.Categories.Organic),
		zap.Bool("recyclable", advice.Categories.InorganicRecyclable),
		zap.Bool("non_recyclable", advice.Categories.InorganicNonRecyclable))
	return analysis, nil
}

func (s *AnalysisService) History(ctx context.Context, userID int64, limit, offset int) ([]*models.Analysis, error) {
	return s.storage.GetUserAnalyses(ctx, userID, limit, offset)
}

func (s *AnalysisService) Stats(ctx context.Context, userID int64) (*models.UserStats, error) {
	return s.storage.GetUserStats(ctx, userID)
}
