package portalauth

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// sessionRecord is the single-row representation of the persisted session.
type sessionRecord struct {
	bun.BaseModel `bun:"table:auth_sessions,alias:sess"`
	Key           string    `bun:"key,pk" json:"key"`
	Payload       []byte    `bun:"payload,notnull" json:"payload"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

var _ Store = &SQLiteStore{}

// SQLiteStore persists the session record in a local SQLite database, for
// clients that already share one for other local state.
type SQLiteStore struct {
	db     *bun.DB
	key    string
	logger Logger
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// session table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if _, err := db.NewCreateTable().
		Model((*sessionRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{
		db:     db,
		key:    StorageKey,
		logger: defLogger{},
	}, nil
}

func (s *SQLiteStore) WithLogger(logger Logger) *SQLiteStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithStorageKey namespaces the record, for multi-profile clients.
func (s *SQLiteStore) WithStorageKey(key string) *SQLiteStore {
	if key != "" {
		s.key = key
	}
	return s
}

func (s *SQLiteStore) Load() (*PersistedSession, bool) {
	rec := &sessionRecord{}
	err := s.db.NewSelect().
		Model(rec).
		Where("key = ?", s.key).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, false
	}

	record := &PersistedSession{}
	if err := json.Unmarshal(rec.Payload, record); err != nil {
		s.logger.Warn("session store: discarding corrupt record: %v", err)
		return nil, false
	}

	return record.migrate(), true
}

func (s *SQLiteStore) Save(record *PersistedSession) {
	if record == nil {
		s.Clear()
		return
	}

	record = record.Clone()
	record.SchemaVersion = storageSchemaVersion

	payload, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn("session store: marshal failed: %v", err)
		return
	}

	rec := &sessionRecord{
		Key:       s.key,
		Payload:   payload,
		UpdatedAt: time.Now(),
	}

	if _, err := s.db.NewInsert().
		Model(rec).
		On("CONFLICT (key) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(context.Background()); err != nil {
		s.logger.Warn("session store: save failed: %v", err)
	}
}

func (s *SQLiteStore) Clear() {
	if _, err := s.db.NewDelete().
		Model((*sessionRecord)(nil)).
		Where("key = ?", s.key).
		Exec(context.Background()); err != nil {
		s.logger.Warn("session store: clear failed: %v", err)
	}
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
