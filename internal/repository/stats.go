package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/napieracademy/sitemap-manager/internal/logger"
	"github.com/napieracademy/sitemap-manager/internal/models"
)

// ErrStatsNotFound is returned when the statistics row has never been written.
var ErrStatsNotFound = errors.New("sitemap stats not found")

// StatsRepository reads and upserts the single sitemap statistics row.
// Only the generation pipeline writes it; dashboards read it.
type StatsRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStatsRepository(db *sql.DB, log logger.Logger) *StatsRepository {
	return &StatsRepository{
		db:     db,
		logger: log,
	}
}

// Read returns the statistics row, or ErrStatsNotFound before the first run.
func (r *StatsRepository) Read(ctx context.Context) (*models.SitemapStats, error) {
	query := `
		SELECT id, last_generation, urls_count, film_count, serie_count,
		       person_count, subtype_counts, is_error, error_message
		FROM sitemap_stats
		WHERE id = $1
	`

	var stats models.SitemapStats
	var subtypeJSON []byte
	var errorMessage sql.NullString

	err := r.db.QueryRowContext(ctx, query, models.StatsRowID).Scan(
		&stats.ID,
		&stats.LastGeneration,
		&stats.URLsCount,
		&stats.FilmCount,
		&stats.SerieCount,
		&stats.PersonCount,
		&subtypeJSON,
		&stats.IsError,
		&errorMessage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query sitemap stats: %w", err)
	}

	if len(subtypeJSON) > 0 {
		if unmarshalErr := json.Unmarshal(subtypeJSON, &stats.SubtypeCounts); unmarshalErr != nil {
			return nil, fmt.Errorf("unmarshal subtype counts: %w", unmarshalErr)
		}
	}
	stats.ErrorMessage = errorMessage.String

	return &stats, nil
}

// WriteSuccess upserts the row with the counts of a completed run and
// clears any previous error state.
func (r *StatsRepository) WriteSuccess(ctx context.Context, stats *models.SitemapStats) error {
	subtypeJSON, err := json.Marshal(stats.SubtypeCounts)
	if err != nil {
		return fmt.Errorf("marshal subtype counts: %w", err)
	}

	query := `
		INSERT INTO sitemap_stats (
			id, last_generation, urls_count, film_count, serie_count,
			person_count, subtype_counts, is_error, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, false, NULL)
		ON CONFLICT (id) DO UPDATE SET
			last_generation = EXCLUDED.last_generation,
			urls_count = EXCLUDED.urls_count,
			film_count = EXCLUDED.film_count,
			serie_count = EXCLUDED.serie_count,
			person_count = EXCLUDED.person_count,
			subtype_counts = EXCLUDED.subtype_counts,
			is_error = false,
			error_message = NULL
	`

	_, err = r.db.ExecContext(ctx, query,
		models.StatsRowID,
		stats.LastGeneration,
		stats.URLsCount,
		stats.FilmCount,
		stats.SerieCount,
		stats.PersonCount,
		subtypeJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert sitemap stats: %w", err)
	}

	return nil
}

// WriteFailure marks the row as errored. Count columns are deliberately not
// touched: they keep the values of the last successful run. A fresh insert
// (first run ever failing) starts with zero counts.
func (r *StatsRepository) WriteFailure(ctx context.Context, at time.Time, message string) error {
	query := `
		INSERT INTO sitemap_stats (
			id, last_generation, urls_count, film_count, serie_count,
			person_count, subtype_counts, is_error, error_message
		) VALUES ($1, $2, 0, 0, 0, 0, '{}', true, $3)
		ON CONFLICT (id) DO UPDATE SET
			last_generation = EXCLUDED.last_generation,
			is_error = true,
			error_message = EXCLUDED.error_message
	`

	_, err := r.db.ExecContext(ctx, query, models.StatsRowID, at, message)
	if err != nil {
		return fmt.Errorf("mark sitemap stats errored: %w", err)
	}

	return nil
}
