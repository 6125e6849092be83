package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/amirb101/proofdeck/store"
)

func (d *DB) CreateCard(ctx context.Context, create *store.Card) (*store.Card, error) {
	fields := []string{"uid", "deck", "statement", "proof", "hints", "tags"}
	values := []any{create.UID, create.Deck, create.Statement, create.Proof, create.Hints, create.Tags}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		values = append(values, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		values = append(values, create.UpdatedTs)
	}

	placeholders := make([]string, 0, len(values))
	for i := range values {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}

	stmt := `INSERT INTO card (` + strings.Join(fields, ", ") + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		RETURNING id, created_ts, updated_ts, row_status`

	if err := d.db.QueryRowContext(ctx, stmt, values...).Scan(
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
	argIndex := 1

	if v := find.ID; v != nil {
		where = append(where, fmt.Sprintf("card.id = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := find.UID; v != nil {
		where = append(where, fmt.Sprintf("card.uid = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := find.Deck; v != nil {
		where = append(where, fmt.Sprintf("card.deck = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := find.RowStatus; v != nil {
		where = append(where, fmt.Sprintf("card.row_status = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT
			id, uid, row_status, created_ts, updated_ts,
			deck, statement, proof, hints, tags
		FROM card
		WHERE %s
		ORDER BY card.created_ts ASC, card.id ASC
	`, strings.Join(where, " AND "))

	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
		if find.Offset != nil {
			query += fmt.Sprintf(" OFFSET %d", *find.Offset)
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
	argIndex := 1

	if v := update.UpdatedTs; v != nil {
		set = append(set, fmt.Sprintf("updated_ts = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := update.RowStatus; v != nil {
		set = append(set, fmt.Sprintf("row_status = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := update.Deck; v != nil {
		set = append(set, fmt.Sprintf("deck = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := update.Statement; v != nil {
		set = append(set, fmt.Sprintf("statement = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := update.Proof; v != nil {
		set = append(set, fmt.Sprintf("proof = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := update.Hints; v != nil {
		set = append(set, fmt.Sprintf("hints = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := update.Tags; v != nil {
		set = append(set, fmt.Sprintf("tags = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)

	stmt := fmt.Sprintf(`UPDATE card SET %s WHERE id = $%d
		RETURNING id, uid, row_status, created_ts, updated_ts, deck, statement, proof, hints, tags`,
		strings.Join(set, ", "), argIndex)

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
	result, err := d.db.ExecContext(ctx, `DELETE FROM card WHERE id = $1`, delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("card not found")
	}

	return nil
}
