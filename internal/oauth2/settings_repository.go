package oauth2

import (
	"context"

	"hubspot-proxy/internal/common/errors"
)

// DefaultSettingsKey is the settings row holding the session blob
const DefaultSettingsKey = "hubspot_oauth2_token"

// SettingsStorage is a key/value settings table. GetSetting returns "" for
// a missing key.
type SettingsStorage interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// SettingsRepository stores the token state in a settings table
type SettingsRepository struct {
	storage SettingsStorage
	key     string
	codec   blobCodec
}

// NewSettingsRepository creates a settings-backed repository
func NewSettingsRepository(storage SettingsStorage, opts ...RepositoryOption) *SettingsRepository {
	options := repositoryOptions{key: DefaultSettingsKey}
	for _, opt := range opts {
		opt(&options)
	}
	return &SettingsRepository{
		storage: storage,
		key:     options.key,
		codec:   blobCodec{encryptor: options.encryptor},
	}
}

// Load reads the state, returning nil for an empty row
func (r *SettingsRepository) Load(ctx context.Context) (*TokenState, error) {
	blob, err := r.storage.GetSetting(ctx, r.key)
	if err != nil {
		return nil, errors.ConnectionError("failed to load token from settings", err)
	}
	return r.codec.decode(blob)
}

// Save writes the state
func (r *SettingsRepository) Save(ctx context.Context, state *TokenState) error {
	blob, err := r.codec.encode(state)
	if err != nil {
		return err
	}
	if err := r.storage.SetSetting(ctx, r.key, blob); err != nil {
		return errors.ConnectionError("failed to save token to settings", err)
	}
	return nil
}

// Clear blanks the row
func (r *SettingsRepository) Clear(ctx context.Context) error {
	if err := r.storage.SetSetting(ctx, r.key, ""); err != nil {
		return errors.ConnectionError("failed to clear token in settings", err)
	}
	return nil
}
