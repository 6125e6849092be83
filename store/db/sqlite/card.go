package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/amirb101/proofdeck/store"
)

func (d *DB) CreateCard(ctx context.Context, create *store.Card) (*store.Card, error) {
	fields := []string{"uid", "deck", "statement", "proof", "hints", "tags"}
	placeholderValues := []any{create.UID, create.Deck, create.Statement, create.Proof, create.Hints, create.Tags}

	// Add optional timestamps
	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		placeholderValues = append(placeholderValues, create.UpdatedTs)
	}

	stmt := `INSERT INTO card (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts, row_status`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
		&create.RowStatus,
	); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	return create, nil
}

func (d *DB) ListCards(ctx context.Context, find *store.FindCard) ([]*store.Card, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "card.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "card.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Deck; v != nil {
		where, args = append(where, "card.deck = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "card.row_status = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, row_status, created_ts, updated_ts,
			deck, statement, proof, hints, tags
		FROM card
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY card.created_ts ASC, card.id ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Card, 0)
	for rows.Next() {
		var card store.Card
		var hints, tags sql.NullString

		if err := rows.Scan(
			&card.ID,
			&card.UID,
			&card.RowStatus,
			&card.CreatedTs,
			&card.UpdatedTs,
			&card.Deck,
			&card.Statement,
			&card.Proof,
			&hints,
			&tags,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}

		if hints.Valid {
			card.Hints = &hints.String
		}
		if tags.Valid {
			card.Tags = &tags.String
		}

		list = append(list, &card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateCard(ctx context.Context, update *store.UpdateCard) (*store.Card, error) {
	set, args := []string{}, []any{}

	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Deck; v != nil {
		set, args = append(set, "deck = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Statement; v != nil {
		set, args = append(set, "statement = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Proof; v != nil {
		set, args = append(set, "proof = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Hints; v != nil {
		set, args = append(set, "hints = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Tags; v != nil {
		set, args = append(set, "tags = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)

	stmt := `UPDATE card SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, row_status, created_ts, updated_ts, deck, statement, proof, hints, tags`

	var card store.Card
	var hints, tags sql.NullString
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&card.ID,
		&card.UID,
		&card.RowStatus,
		&card.CreatedTs,
		&card.UpdatedTs,
		&card.Deck,
		&card.Statement,
		&card.Proof,
		&hints,
		&tags,
	); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	if hints.Valid {
		card.Hints = &hints.String
	}
	if tags.Valid {
		card.Tags = &tags.String
	}

	return &card, nil
}

func (d *DB) DeleteCard(ctx context.Context, delete *store.DeleteCard) error {
	stmt := `DELETE FROM card WHERE id = ` + placeholder(1)
	result, err := d.db.ExecContext(ctx, stmt, delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("card not found")
	}

	return nil
}
