package storage

import (
    "context"
    "sort"
    "sync"

    "github.com/xaenox/recycle-bot/internal/models"
)

type MemoryStorage struct {
    mu       sync.RWMutex
    analyses map[int64][]*models.Analysis
    stats    map[int64]*models.UserStats
}

func NewMemoryStorage() *MemoryStorage {
    return &MemoryStorage{
        analyses: make(map[int64][]*models.Analysis),
        stats:    make(map[int64]*models.UserStats),
    }
}

func (s *MemoryStorage) SaveAnalysis(ctx context.Context, analysis *models.Analysis) error {
    s.mu.Lock()
    defer s.mu.Unlock()

    stored := *analysis
    stored.Predictions = append([]models.Prediction(nil), analysis.Predictions...)

    list := append(s.analyses[analysis.UserID], &stored)
    sort.SliceStable(list, func(i, j int) bool {
        return list[i].CreatedAt.After(list[j].CreatedAt)
    })
    s.analyses[analysis.UserID] = list

    stats, exists := s.stats[analysis.UserID]
    if !exists {
        stats = &models.UserStats{UserID: analysis.UserID}
        s.stats[analysis.UserID] = stats
    }
    stats.Add(&stored)
    return nil
}

func (s *MemoryStorage) GetUserAnalyses(ctx context.Context, userID int64, limit, offset int) ([]*models.Analysis, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()

    list := s.analyses[userID]
    if offset < 0 {
        offset = 0
    }
    if offset >= len(list) {
        return []*models.Analysis{}, nil
    }
    end := len(list)
    if limit > 0 && offset+limit < end {
        end = offset + limit
    }

    result := make([]*models.Analysis, 0, end-offset)
    for _, a := range list[offset:end] {
        cp := *a
        result = append(result, &cp)
    }
    return result, nil
}

func (s *MemoryStorage) GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()

    if stats, exists := s.stats[userID]; exists {
        cp := *stats
        return &cp, nil
    }
    return &models.UserStats{UserID: userID}, nil
}

func (s *MemoryStorage) Close() error {
    // Nothing to close for in-memory storage
    return nil
}
