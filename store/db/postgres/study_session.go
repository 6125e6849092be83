package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirb101/proofdeck/store"
)

func (d *DB) CreateStudySession(ctx context.Context, create *store.StudySession) (*store.StudySession, error) {
	query := `
		INSERT INTO study_session (uid, user_id, started_ts, ended_ts, answered_count, correct_count, total_time_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_ts
	`

	if err := d.db.QueryRowContext(ctx, query,
		create.UID, create.UserID, create.StartedTs, create.EndedTs,
		create.AnsweredCount, create.CorrectCount, create.TotalTimeSeconds,
	).Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, fmt.Errorf("failed to create study session: %w", err)
	}

	return create, nil
}

func (d *DB) ListStudySessions(ctx context.Context, find *store.FindStudySession) ([]*store.StudySession, error) {
	where, args := []string{"1 = 1"}, []any{}
	argIndex := 1

	if v := find.ID; v != nil {
		where = append(where, fmt.Sprintf("id = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := find.UID; v != nil {
		where = append(where, fmt.Sprintf("uid = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := find.UserID; v != nil {
		where = append(where, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := find.StartedAfterTs; v != nil {
		where = append(where, fmt.Sprintf("started_ts >= $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}
	if v := find.StartedBeforeTs; v != nil {
		where = append(where, fmt.Sprintf("started_ts < $%d", argIndex))
		args = append(args, *v)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT
			id, uid, user_id, created_ts, started_ts, ended_ts,
			answered_count, correct_count, total_time_seconds
		FROM study_session
		WHERE %s
		ORDER BY started_ts DESC, id DESC
	`, strings.Join(where, " AND "))

	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
		if find.Offset != nil {
			query += fmt.Sprintf(" OFFSET %d", *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list study sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.StudySession, 0)
	for rows.Next() {
		var session store.StudySession
		if err := rows.Scan(
			&session.ID, &session.UID, &session.UserID, &session.CreatedTs,
			&session.StartedTs, &session.EndedTs,
			&session.AnsweredCount, &session.CorrectCount, &session.TotalTimeSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		list = append(list, &session)
	}

	return list, rows.Err()
}

func (d *DB) DeleteStudySession(ctx context.Context, delete *store.DeleteStudySession) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM study_session WHERE id = $1`, delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete study session: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("study session not found")
	}

	return nil
}
