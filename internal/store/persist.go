package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"crypto-tracker-go/internal/models"
	"gorm.io/gorm"
)

// SchemaVersion is the current shape of the persisted record. Records with a
// higher version refuse to load; records with a lower version run through the
// migration chain.
const SchemaVersion = 1

// persistedState is the whitelisted subset of the store written to durable
// storage. Everything else is ephemeral and resets to defaults on start.
type persistedState struct {
	Theme             Theme              `json:"theme"`
	Currency          string             `json:"currency"`
	Favorites         []string           `json:"favorites"`
	Portfolios        []models.Portfolio `json:"portfolios"`
	ActivePortfolioID *string            `json:"activePortfolioId"`
	SearchHistory     []string           `json:"searchHistory"`
}

// envelope wraps the persisted subset with its schema version.
type envelope struct {
	Version int            `json:"version"`
	State   persistedState `json:"state"`
}

// migrations upgrade a raw state object one version step at a time;
// migrations[n] takes a version-n object to version n+1.
var migrations = []func(map[string]json.RawMessage) error{
	// 0 -> 1: the legacy record had no version field and the same field
	// shape, so this step only stamps the version.
	func(map[string]json.RawMessage) error { return nil },
}

// encodeState is the pure full-state -> durable-bytes mapping.
func encodeState(p persistedState) ([]byte, error) {
	return json.Marshal(envelope{Version: SchemaVersion, State: p})
}

// decodeState is the inverse of encodeState, upgrading older records through
// the migration chain first.
func decodeState(raw []byte) (persistedState, error) {
	var env struct {
		Version int             `json:"version"`
		State   json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return persistedState{}, fmt.Errorf("failed to decode persisted record: %w", err)
	}
	if env.Version > SchemaVersion {
		return persistedState{}, fmt.Errorf("persisted record has unsupported version %d (supported up to %d)", env.Version, SchemaVersion)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(env.State, &fields); err != nil {
		return persistedState{}, fmt.Errorf("failed to decode persisted state: %w", err)
	}
	for v := env.Version; v < SchemaVersion; v++ {
		if err := migrations[v](fields); err != nil {
			return persistedState{}, fmt.Errorf("failed to migrate persisted state from version %d: %w", v, err)
		}
	}

	migrated, err := json.Marshal(fields)
	if err != nil {
		return persistedState{}, err
	}

	var p persistedState
	if err := json.Unmarshal(migrated, &p); err != nil {
		return persistedState{}, fmt.Errorf("failed to decode persisted state: %w", err)
	}
	return p, nil
}

// Repository persists the serialized store as a single named record.
type Repository interface {
	// Load returns the record's payload, or nil when no record exists yet.
	Load(name string) ([]byte, error)
	// Save writes the record, replacing any previous payload.
	Save(name string, payload []byte) error
}

// StateRecord is the durable row holding one serialized store.
type StateRecord struct {
	gorm.Model
	Name    string `gorm:"uniqueIndex;not null"`
	Payload string `gorm:"not null"`
}

// GormRepository stores state records in a gorm-managed database.
type GormRepository struct {
	db *gorm.DB
}

// ensure GormRepository implements the interface
var _ Repository = (*GormRepository)(nil)

// NewGormRepository creates a repository over db.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Load implements Repository.
func (r *GormRepository) Load(name string) ([]byte, error) {
	var rec StateRecord
	err := r.db.Where(&StateRecord{Name: name}).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state record '%s': %w", name, err)
	}
	return []byte(rec.Payload), nil
}

// Save implements Repository.
func (r *GormRepository) Save(name string, payload []byte) error {
	rec := StateRecord{Name: name}
	err := r.db.Where(&StateRecord{Name: name}).
		Assign(map[string]any{"payload": string(payload)}).
		FirstOrCreate(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save state record '%s': %w", name, err)
	}
	return nil
}
