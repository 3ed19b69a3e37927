package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/recycle-bot/internal/classifier"
	"github.com/xaenox/recycle-bot/internal/imageinput"
	"github.com/xaenox/recycle-bot/internal/models"
	"github.com/xaenox/recycle-bot/internal/storage"
	"go.uber.org/zap"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

type stubClassifier struct {
	predictions []models.Prediction
	err         error
	calls       int
	mime        string
}

func (s *stubClassifier) Classify(ctx context.Context, image []byte, mime string) ([]models.Prediction, error) {
	s.calls++
	s.mime = mime
	return s.predictions, s.err
}

func newService(clf classifier.ImageClassifier) (*AnalysisService, *storage.MemoryStorage) {
	store := storage.NewMemoryStorage()
	svc := NewAnalysisService(clf, classifier.NewCaptionClassifier(0), store, 0, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestAnalyzeImage_AdvisesAndStores(t *testing.T) {
	clf := &stubClassifier{predictions: []models.Prediction{
		{Label: "banana", Probability: 0.92},
		{Label: "plastic bag", Probability: 0.05},
	}}
	svc, _ := newService(clf)
	ctx := context.Background()

	analysis, err := svc.AnalyzeImage(ctx, ImageRequest{UserID: 42, Source: models.TelegramPhoto, Image: jpegHeader})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", clf.mime)
	assert.NotEmpty(t, analysis.ID)
	assert.True(t, analysis.Categories.Organic)
	assert.False(t, analysis.Categories.InorganicRecyclable)
	assert.Contains(t, analysis.Recommendation, "Komposkan sampah organik jika memungkinkan.")

	history, err := svc.History(ctx, 42, 5, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, analysis.ID, history[0].ID)
	assert.Equal(t, "banana", history[0].TopLabel())

	stats, err := svc.Stats(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Organic)
}

func TestAnalyzeImage_RejectsBadInput(t *testing.T) {
	clf := &stubClassifier{}
	svc, _ := newService(clf)

	_, err := svc.AnalyzeImage(context.Background(), ImageRequest{UserID: 1, Image: []byte("hello world")})
	assert.ErrorIs(t, err, imageinput.ErrNotImage)
	assert.Zero(t, clf.calls)
}

func TestAnalyzeImage_CaptionFallback(t *testing.T) {
	svc, _ := newService(&stubClassifier{err: errors.New("model unavailable")})

	analysis, err := svc.AnalyzeImage(context.Background(), ImageRequest{UserID: 1, Image: jpegHeader, Caption: "botol plastik"})
	require.NoError(t, err)
	assert.True(t, analysis.Categories.InorganicRecyclable)
	assert.Equal(t, "bottle plastic", analysis.TopLabel())
}

func TestAnalyzeImage_ClassifierErrorWithoutCaption(t *testing.T) {
	svc, store := newService(&stubClassifier{err: errors.New("model unavailable")})

	_, err := svc.AnalyzeImage(context.Background(), ImageRequest{UserID: 1, Image: jpegHeader})
	assert.ErrorIs(t, err, ErrClassification)

	history, err := store.GetUserAnalyses(context.Background(), 1, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAnalyzeImage_EmptyPredictionsAreUnrecognized(t *testing.T) {
	svc, _ := newService(&stubClassifier{predictions: nil})

	analysis, err := svc.AnalyzeImage(context.Background(), ImageRequest{UserID: 1, Image: jpegHeader})
	require.NoError(t, err)
	assert.False(t, analysis.Categories.Any())
	assert.Equal(t, "Jenis sampah tidak dikenali. Mohon coba gambar lain.", analysis.Recommendation)
}

func TestAnalyzeText(t *testing.T) {
	svc, _ := newService(&stubClassifier{})

	analysis, err := svc.AnalyzeText(context.Background(), 3, "styrofoam cup")
	require.NoError(t, err)
	assert.Equal(t, models.TelegramText, analysis.Source)
	assert.True(t, analysis.Categories.InorganicNonRecyclable)
}
