package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirb101/proofdeck/store"
)

func (d *DB) CreateStudySession(ctx context.Context, create *store.StudySession) (*store.StudySession, error) {
	fields := []string{"uid", "user_id", "started_ts", "ended_ts", "answered_count", "correct_count", "total_time_seconds"}
	placeholderValues := []any{
		create.UID, create.UserID, create.StartedTs, create.EndedTs,
		create.AnsweredCount, create.CorrectCount, create.TotalTimeSeconds,
	}

	stmt := `INSERT INTO study_session (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create study session: %w", err)
	}

	return create, nil
}

func (d *DB) ListStudySessions(ctx context.Context, find *store.FindStudySession) ([]*store.StudySession, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "study_session.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "study_session.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "study_session.user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartedAfterTs; v != nil {
		where, args = append(where, "study_session.started_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartedBeforeTs; v != nil {
		where, args = append(where, "study_session.started_ts < "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, user_id, created_ts, started_ts, ended_ts,
			answered_count, correct_count, total_time_seconds
		FROM study_session
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY study_session.started_ts DESC, study_session.id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query study sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.StudySession, 0)
	for rows.Next() {
		var session store.StudySession
		if err := rows.Scan(
			&session.ID,
			&session.UID,
			&session.UserID,
			&session.CreatedTs,
			&session.StartedTs,
			&session.EndedTs,
			&session.AnsweredCount,
			&session.CorrectCount,
			&session.TotalTimeSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}

		list = append(list, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate study sessions: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteStudySession(ctx context.Context, delete *store.DeleteStudySession) error {
	stmt := `DELETE FROM study_session WHERE id = ` + placeholder(1)
	result, err := d.db.ExecContext(ctx, stmt, delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete study session: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("study session not found")
	}

	return nil
}
