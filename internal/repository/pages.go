// Package repository provides database access to the tracked-pages table
// and the sitemap statistics row.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/napieracademy/sitemap-manager/internal/logger"
	"github.com/napieracademy/sitemap-manager/internal/models"
)

// BatchSize is the fixed window used to read the tracked-pages table. The
// backing query layer caps result sets, so the full table is read in
// repeated offset windows of this size.
const BatchSize = 1000

type PageRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPageRepository(db *sql.DB, log logger.Logger) *PageRepository {
	return &PageRepository{
		db:     db,
		logger: log,
	}
}

// CountAll returns the exact number of tracked records. There is no
// fallback: without a total the run has no denominator and must abort.
func (r *PageRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generated_pages`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count generated pages: %w", err)
	}
	return count, nil
}

// FetchAll reads the complete record set in fixed-size batches, advancing
// the offset strictly in increasing order. total comes from CountAll and
// bounds the scan. A failed batch is logged and skipped; the run continues
// with whatever was retrieved, and the shortfall surfaces as a discrepancy
// between the total and the processed count.
func (r *PageRepository) FetchAll(ctx context.Context, total int) ([]models.TrackedPage, error) {
	pages := make([]models.TrackedPage, 0, total)

	for offset := 0; offset < total; offset += BatchSize {
		batch, err := r.fetchBatch(ctx, offset)
		if err != nil {
			r.logger.Warn("Batch read failed, skipping",
				logger.Int("offset", offset),
				logger.Int("batch_size", BatchSize),
				logger.Error(err),
			)
			continue
		}

		pages = append(pages, batch...)

		// A short batch means the table ended early (rows deleted since
		// CountAll); nothing left to read.
		if len(batch) < BatchSize {
			break
		}
	}

	return pages, nil
}

// fetchBatch reads one offset window. The ordering clause keeps the scan
// deterministic across batches and across runs.
func (r *PageRepository) fetchBatch(ctx context.Context, offset int) ([]models.TrackedPage, error) {
	query := `
		SELECT slug, page_type, first_generated_at, last_visited_at, visit_count
		FROM generated_pages
		ORDER BY first_generated_at, page_type, slug
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, BatchSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query generated pages: %w", err)
	}
	defer rows.Close()

	return scanPageRows(rows)
}

func scanPageRows(rows *sql.Rows) ([]models.TrackedPage, error) {
	pages := make([]models.TrackedPage, 0, BatchSize)
	for rows.Next() {
		var page models.TrackedPage
		var pageType sql.NullString
		var lastVisited sql.NullTime

		if err := rows.Scan(
			&page.Slug,
			&pageType,
			&page.FirstGeneratedAt,
			&lastVisited,
			&page.VisitCount,
		); err != nil {
			return nil, fmt.Errorf("scan generated page: %w", err)
		}

		page.PageType = pageType.String
		if lastVisited.Valid {
			page.LastVisitedAt = lastVisited.Time
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generated pages: %w", err)
	}
	return pages, nil
}
