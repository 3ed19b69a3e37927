package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/xaenox/recycle-bot/internal/models"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.String("host", config.Host),
		zap.String("dbname", config.DBName))
	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresStorage) SaveAnalysis(ctx context.Context, analysis *models.Analysis) error {
	predictions, err := json.Marshal(analysis.Predictions)
	if err != nil {
		return fmt.Errorf("error encoding predictions: %w", err)
	}

	query := `
		INSERT INTO analyses (id, user_id, source, predictions, organic, inorganic_recyclable,
			inorganic_non_recyclable, recommendation, disposal_instruction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.Source,
		string(predictions),
		analysis.Categories.Organic,
		analysis.Categories.InorganicRecyclable,
		analysis.Categories.InorganicNonRecyclable,
		analysis.Recommendation,
		analysis.DisposalInstruction,
		analysis.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving analysis: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetUserAnalyses(ctx context.Context, userID int64, limit, offset int) ([]*models.Analysis, error) {
	query := `
		SELECT id, user_id, source, predictions, organic, inorganic_recyclable,
			inorganic_non_recyclable, recommendation, disposal_instruction, created_at
		FROM analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, query, userID, limitArg, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying analyses: %w", err)
	}
	defer rows.Close()

	analyses := []*models.Analysis{}
	for rows.Next() {
		var (
			a           models.Analysis
			predictions []byte
		)
		err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Source,
			&predictions,
			&a.Categories.Organic,
			&a.Categories.InorganicRecyclable,
			&a.Categories.InorganicNonRecyclable,
			&a.Recommendation,
			&a.DisposalInstruction,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning analysis: %w", err)
		}
		if err := json.Unmarshal(predictions, &a.Predictions); err != nil {
			s.logger.Warn("Stored predictions are not valid JSON",
				zap.Error(err),
				zap.String("analysis_id", a.ID))
		}
		analyses = append(analyses, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return analyses, nil
}

func (s *PostgresStorage) GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE organic),
			COUNT(*) FILTER (WHERE inorganic_recyclable),
			COUNT(*) FILTER (WHERE inorganic_non_recyclable),
			COUNT(*) FILTER (WHERE NOT organic AND NOT inorganic_recyclable AND NOT inorganic_non_recyclable),
			MAX(created_at)
		FROM analyses
		WHERE user_id = $1`

	stats := &models.UserStats{UserID: userID}
	var lastUsed sql.NullTime
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.Total,
		&stats.Organic,
		&stats.InorganicRecyclable,
		&stats.InorganicNonRecyclable,
		&stats.Unrecognized,
		&lastUsed,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying user stats: %w", err)
	}
	if lastUsed.Valid {
		stats.LastUsedAt = lastUsed.Time
	}
	return stats, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
