package store

import (
	"context"
)

// SystemSettingKey is the key type for system settings.
type SystemSettingKey string

const (
	// SystemSettingSchemaVersion is the applied database schema version.
	SystemSettingSchemaVersion SystemSettingKey = "schema_version"
)

// SystemSetting is a named instance-level setting.
type SystemSetting struct {
	Name  SystemSettingKey
	Value string
}

// FindSystemSetting is the find condition for system setting.
type FindSystemSetting struct {
	Name SystemSettingKey
}

// UpsertSystemSetting creates or replaces a system setting.
func (s *Store) UpsertSystemSetting(ctx context.Context, upsert *SystemSetting) (*SystemSetting, error) {
	setting, err := s.driver.UpsertSystemSetting(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.settingCache.Set(ctx, string(setting.Name), setting)
	return setting, nil
}

// ListSystemSettings lists all system settings.
func (s *Store) ListSystemSettings(ctx context.Context) ([]*SystemSetting, error) {
	return s.driver.ListSystemSettings(ctx)
}

// GetSystemSetting gets a system setting by name, or nil when unset.
func (s *Store) GetSystemSetting(ctx context.Context, find *FindSystemSetting) (*SystemSetting, error) {
	if value, ok := s.settingCache.Get(ctx, string(find.Name)); ok {
		if setting, ok := value.(*SystemSetting); ok {
			return setting, nil
		}
	}

	list, err := s.driver.ListSystemSettings(ctx)
	if err != nil {
		return nil, err
	}
	for _, setting := range list {
		if setting.Name == find.Name {
			s.settingCache.Set(ctx, string(setting.Name), setting)
			return setting, nil
		}
	}
	return nil, nil
}

// GetSchemaVersion returns the applied schema version, or the empty string
// for databases that have not recorded one yet.
func (s *Store) GetSchemaVersion(ctx context.Context) (string, error) {
	setting, err := s.GetSystemSetting(ctx, &FindSystemSetting{Name: SystemSettingSchemaVersion})
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}
