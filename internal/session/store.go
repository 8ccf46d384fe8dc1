package session

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// Storage keys are fixed by the collaborator contract.
const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
)

// TokenStore is the only durable state this client owns. All writes go
// through the session Manager.
type TokenStore interface {
	Access() (string, error)
	Refresh() (string, error)
	SetPair(access, refresh string) error
	SetAccess(access string) error
	Clear() error
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

const credentialsTableName = `credentials`

// SQLiteStore keeps the token pair in a per-user SQLite file.
type SQLiteStore struct {
	db  *sqlx.DB
	log *zap.Logger
}

var _ TokenStore = (*SQLiteStore)(nil)

// DefaultStorePath resolves the session file under the user's config dir.
func DefaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", pkgerrors.Wrap(err, "user config dir")
	}
	return filepath.Join(dir, "openshelf", "session.db"), nil
}

func NewSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, pkgerrors.Wrap(err, "create store dir")
		}
	}
	db, err := sqlx.Connect("sqlite3", "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open sqlite")
	}
	schema := `create table if not exists ` + credentialsTableName + ` (
		key text primary key,
		value text not null
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pkgerrors.Wrap(err, "init schema")
	}
	return &SQLiteStore{db: db, log: log.Named("store")}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Access() (string, error) {
	return s.get(accessTokenKey)
}

func (s *SQLiteStore) Refresh() (string, error) {
	return s.get(refreshTokenKey)
}

func (s *SQLiteStore) SetPair(access, refresh string) error {
	q, args, err := qb.Replace(credentialsTableName).
		Columns("key", "value").
		Values(accessTokenKey, access).
		Values(refreshTokenKey, refresh).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(q, args...)
	return err
}

func (s *SQLiteStore) SetAccess(access string) error {
	q, args, err := qb.Replace(credentialsTableName).
		Columns("key", "value").
		Values(accessTokenKey, access).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(q, args...)
	return err
}

func (s *SQLiteStore) Clear() error {
	q, args, err := qb.Delete(credentialsTableName).
		Where(sq.Eq{"key": []string{accessTokenKey, refreshTokenKey}}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(q, args...)
	return err
}

// get returns "" for an absent key; an absent token is not an error.
func (s *SQLiteStore) get(key string) (string, error) {
	q, args, err := qb.Select("value").
		From(credentialsTableName).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", err
	}
	var value string
	if err := s.db.Get(&value, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}
