// Package credentials stores provider API credentials (TTS vendors, news
// and social source API keys) as opaque msgpack-encoded snapshots. The
// database is the source of truth; a mirrored file on disk lets the
// process recover credentials before the database is reachable at
// start-up, matching the config/ledger database split's "ledger first,
// cache can rebuild" philosophy.
package credentials

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sentineldesk/signalhub/internal/database"
)

// Snapshot is one provider's credential payload: arbitrary key/value
// secrets (API keys, tokens, endpoint overrides) encoded opaquely so the
// database never holds plaintext secrets in a queryable SQL column.
type Snapshot struct {
	Provider  string            `msgpack:"provider"`
	Fields    map[string]string `msgpack:"fields"`
	Version   int               `msgpack:"version"`
	UpdatedAt time.Time         `msgpack:"updated_at"`
}

// Store persists provider credential snapshots to the credentials
// database, mirroring every write to a msgpack file under mirrorDir so
// credentials can be recovered before the database is reachable.
type Store struct {
	db        *database.DB
	mirrorDir string
	log       zerolog.Logger
	mu        sync.Mutex
}

// NewStore builds a Store backed by db, mirroring writes under mirrorDir.
// db.Migrate() must have been called already (provider_credentials table).
func NewStore(db *database.DB, mirrorDir string, log zerolog.Logger) (*Store, error) {
	if mirrorDir != "" {
		if err := os.MkdirAll(mirrorDir, 0o700); err != nil {
			return nil, fmt.Errorf("create credentials mirror directory: %w", err)
		}
	}
	return &Store{
		db:        db,
		mirrorDir: mirrorDir,
		log:       log.With().Str("component", "credentials").Logger(),
	}, nil
}

// Put encodes and stores a credential snapshot for provider, replacing any
// existing one.
func (s *Store) Put(provider string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Provider:  provider,
		Fields:    fields,
		Version:   1,
		UpdatedAt: time.Now(),
	}

	existing, ok, err := s.loadFromDB(provider)
	if err == nil && ok {
		snap.Version = existing.Version + 1
	}

	payload, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode credential snapshot for %s: %w", provider, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO provider_credentials (provider, payload, version, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(provider) DO UPDATE SET payload = excluded.payload, version = excluded.version, updated_at = excluded.updated_at`,
		provider, payload, snap.Version, snap.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store credential snapshot for %s: %w", provider, err)
	}

	if mirrorErr := s.mirror(provider, payload); mirrorErr != nil {
		s.log.Warn().Err(mirrorErr).Str("provider", provider).Msg("failed to mirror credential snapshot to disk")
	}
	return nil
}

// Get retrieves a provider's credential snapshot, falling back to the
// mirrored file when the database read fails (e.g. database not yet
// reachable during early start-up).
func (s *Store) Get(provider string) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok, err := s.loadFromDB(provider)
	if err == nil {
		return snap, ok, nil
	}

	mirrored, mirrorOK, mirrorErr := s.loadFromMirror(provider)
	if mirrorErr != nil {
		return Snapshot{}, false, fmt.Errorf("load credential snapshot for %s: %w (mirror fallback also failed: %v)", provider, err, mirrorErr)
	}
	return mirrored, mirrorOK, nil
}

// Delete removes a provider's stored credential, from both the database
// and its mirror file.
func (s *Store) Delete(provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM provider_credentials WHERE provider = ?`, provider); err != nil {
		return fmt.Errorf("delete credential snapshot for %s: %w", provider, err)
	}
	if s.mirrorDir != "" {
		_ = os.Remove(s.mirrorPath(provider))
	}
	return nil
}

// List returns the provider names with a stored credential.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT provider FROM provider_credentials ORDER BY provider`)
	if err != nil {
		return nil, fmt.Errorf("list credential providers: %w", err)
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan credential provider row: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

func (s *Store) loadFromDB(provider string) (Snapshot, bool, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM provider_credentials WHERE provider = ?`, provider).Scan(&payload)
	if err == sql.ErrNoRows {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode credential snapshot for %s: %w", provider, err)
	}
	return snap, true, nil
}

func (s *Store) mirrorPath(provider string) string {
	return filepath.Join(s.mirrorDir, provider+".msgpack")
}

func (s *Store) mirror(provider string, payload []byte) error {
	if s.mirrorDir == "" {
		return nil
	}
	dest := s.mirrorPath(provider)
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write mirror file: %w", err)
	}
	return os.Rename(tmp, dest)
}

func (s *Store) loadFromMirror(provider string) (Snapshot, bool, error) {
	if s.mirrorDir == "" {
		return Snapshot{}, false, nil
	}
	data, err := os.ReadFile(s.mirrorPath(provider))
	if os.IsNotExist(err) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode mirrored credential snapshot for %s: %w", provider, err)
	}
	return snap, true, nil
}
