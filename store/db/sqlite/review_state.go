package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirb101/proofdeck/store"
)

func (d *DB) UpsertReviewState(ctx context.Context, upsert *store.ReviewState) (*store.ReviewState, error) {
	stmt := `
		INSERT INTO review_state (card_uid, repetition, interval_days, ease_factor, review_count, last_reviewed_ts, next_review_ts)
		VALUES (` + placeholders(7) + `)
		ON CONFLICT (card_uid) DO UPDATE SET
			repetition = EXCLUDED.repetition,
			interval_days = EXCLUDED.interval_days,
			ease_factor = EXCLUDED.ease_factor,
			review_count = EXCLUDED.review_count,
			last_reviewed_ts = EXCLUDED.last_reviewed_ts,
			next_review_ts = EXCLUDED.next_review_ts,
			updated_ts = (strftime('%s', 'now'))
		RETURNING id, card_uid, created_ts, updated_ts, repetition, interval_days, ease_factor, review_count, last_reviewed_ts, next_review_ts`

	var state store.ReviewState
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.CardUID, upsert.Repetition, upsert.IntervalDays, upsert.EaseFactor,
		upsert.ReviewCount, upsert.LastReviewedTs, upsert.NextReviewTs,
	).Scan(
		&state.ID,
		&state.CardUID,
		&state.CreatedTs,
		&state.UpdatedTs,
		&state.Repetition,
		&state.IntervalDays,
		&state.EaseFactor,
		&state.ReviewCount,
		&state.LastReviewedTs,
		&state.NextReviewTs,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert review state: %w", err)
	}

	return &state, nil
}

func (d *DB) ListReviewStates(ctx context.Context, find *store.FindReviewState) ([]*store.ReviewState, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.CardUID; v != nil {
		where, args = append(where, "review_state.card_uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DueBeforeTs; v != nil {
		where, args = append(where, "review_state.next_review_ts <= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, card_uid, created_ts, updated_ts,
			repetition, interval_days, ease_factor, review_count,
			last_reviewed_ts, next_review_ts
		FROM review_state
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY review_state.next_review_ts ASC, review_state.id ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review states: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ReviewState, 0)
	for rows.Next() {
		var state store.ReviewState
		if err := rows.Scan(
			&state.ID,
			&state.CardUID,
			&state.CreatedTs,
			&state.UpdatedTs,
			&state.Repetition,
			&state.IntervalDays,
			&state.EaseFactor,
			&state.ReviewCount,
			&state.LastReviewedTs,
			&state.NextReviewTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review state: %w", err)
		}

		list = append(list, &state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review states: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteReviewState(ctx context.Context, delete *store.DeleteReviewState) error {
	stmt := `DELETE FROM review_state WHERE card_uid = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.CardUID); err != nil {
		return fmt.Errorf("failed to delete review state: %w", err)
	}

	return nil
}
