package ratings

import (
	"context"
	"fmt"
	"time"

	"github.com/aimerfeng/PawPals/internal/monitoring"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const upsertSummariesSQL = `
INSERT INTO rating_summaries (provider_id, average_rating, total_reviews, updated_at)
SELECT provider_id, AVG(rating)::double precision, COUNT(*), NOW()
FROM reviews
WHERE rating BETWEEN 1 AND 5
GROUP BY provider_id
ON CONFLICT (provider_id) DO UPDATE
SET average_rating = EXCLUDED.average_rating,
    total_reviews  = EXCLUDED.total_reviews,
    updated_at     = EXCLUDED.updated_at`

const deleteOrphanSummariesSQL = `
DELETE FROM rating_summaries rs
WHERE NOT EXISTS (
    SELECT 1 FROM reviews r
    WHERE r.provider_id = rs.provider_id AND r.rating BETWEEN 1 AND 5
)`

// Refresher recomputes the denormalized rating_summaries table
type Refresher struct {
	pool *pgxpool.Pool
}

// NewRefresher creates a refresher
func NewRefresher(pool *pgxpool.Pool) *Refresher {
	return &Refresher{pool: pool}
}

// RefreshAll rewrites every provider's summary from its reviews in one
// transaction and returns the number of summaries written.
func (r *Refresher) RefreshAll(ctx context.Context) (int64, error) {
	start := time.Now()

	var written int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, upsertSummariesSQL)
		if err != nil {
			return fmt.Errorf("upsert rating summaries: %w", err)
		}
		written = tag.RowsAffected()

		if _, err := tx.Exec(ctx, deleteOrphanSummariesSQL); err != nil {
			return fmt.Errorf("delete orphan rating summaries: %w", err)
		}
		return nil
	})
	monitoring.RecordDBQuery("refresh_ratings", time.Since(start))

	if err != nil {
		monitoring.RecordRatingRefresh("error")
		return 0, err
	}
	monitoring.RecordRatingRefresh("ok")

	log.Info().
		Int64("summaries", written).
		Dur("duration", time.Since(start)).
		Msg("Rating summaries refreshed")
	return written, nil
}
