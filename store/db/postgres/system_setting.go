package postgres

import (
	"context"
	"fmt"

	"github.com/amirb101/proofdeck/store"
)

func (d *DB) UpsertSystemSetting(ctx context.Context, upsert *store.SystemSetting) (*store.SystemSetting, error) {
	query := `
		INSERT INTO system_setting (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := d.db.ExecContext(ctx, query, upsert.Name, upsert.Value); err != nil {
		return nil, fmt.Errorf("failed to upsert system setting: %w", err)
	}

	return upsert, nil
}

func (d *DB) ListSystemSettings(ctx context.Context) ([]*store.SystemSetting, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name, value FROM system_setting`)
	if err != nil {
		return nil, fmt.Errorf("failed to query system settings: %w", err)
	}
	defer rows.Close()

	list := make([]*store.SystemSetting, 0)
	for rows.Next() {
		var setting store.SystemSetting
		if err := rows.Scan(&setting.Name, &setting.Value); err != nil {
			return nil, fmt.Errorf("failed to scan system setting: %w", err)
		}
		list = append(list, &setting)
	}

	return list, rows.Err()
}
