package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirb101/proofdeck/store"
)

func (d *DB) UpsertReviewState(ctx context.Context, upsert *store.ReviewState) (*store.ReviewState, error) {
	query := `
		INSERT INTO review_state (card_uid, repetition, interval_days, ease_factor, review_count, last_reviewed_ts, next_review_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (card_uid) DO UPDATE SET
			repetition = EXCLUDED.repetition,
			interval_days = EXCLUDED.interval_days,
			ease_factor = EXCLUDED.ease_factor,
			review_count = EXCLUDED.review_count,
			last_reviewed_ts = EXCLUDED.last_reviewed_ts,
			next_review_ts = EXCLUDED.next_review_ts,
			updated_ts = EXTRACT(EPOCH FROM NOW())
		RETURNING id, card_uid, created_ts, updated_ts, repetition, interval_days, ease_factor, review_count, last_reviewed_ts, next_review_ts
	`

	var state store.ReviewState
	err := d.db.QueryRowContext(ctx, query,
		upsert.CardUID, upsert.Repetition, upsert.IntervalDays, upsert.EaseFactor,
		upsert.ReviewCount, upsert.LastReviewedTs, upsert.NextReviewTs,
	).Scan(
		&state.ID, &state.CardUID, &state.CreatedTs, &state.UpdatedTs,
		&state.Repetition, &state.IntervalDays, &state.EaseFactor,
		&state.ReviewCount, &state.LastReviewedTs, &state.NextReviewTs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert review state: %w", err)
	}

	return &state, nil
}

func (d *DB) ListReviewStates(ctx context.Context, find *store.FindReviewState) ([]*store.ReviewState, error) {
	where, args := []string{"1 = 1"}, []any{}
	argIndex := 1

	if v := find.CardUID; v != nil {
		where = append(where, fmt.Sprintf("card_uid = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := find.DueBeforeTs; v != nil {
		where = append(where, fmt.Sprintf("next_review_ts <= $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT
			id, card_uid, created_ts, updated_ts,
			repetition, interval_days, ease_factor, review_count,
			last_reviewed_ts, next_review_ts
		FROM review_state
		WHERE %s
		ORDER BY next_review_ts ASC, id ASC
	`, strings.Join(where, " AND "))

	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
		if find.Offset != nil {
			query += fmt.Sprintf(" OFFSET %d", *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list review states: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ReviewState, 0)
	for rows.Next() {
		var state store.ReviewState
		if err := rows.Scan(
			&state.ID, &state.CardUID, &state.CreatedTs, &state.UpdatedTs,
			&state.Repetition, &state.IntervalDays, &state.EaseFactor,
			&state.ReviewCount, &state.LastReviewedTs, &state.NextReviewTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review state: %w", err)
		}
		list = append(list, &state)
	}

	return list, rows.Err()
}

func (d *DB) DeleteReviewState(ctx context.Context, delete *store.DeleteReviewState) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM review_state WHERE card_uid = $1`, delete.CardUID); err != nil {
		return fmt.Errorf("failed to delete review state: %w", err)
	}

	return nil
}
