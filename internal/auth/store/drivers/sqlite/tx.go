package sqlite

import (
	"database/sql"

	"github.com/monitordb/auth/internal/auth/store"
)

// txStore scopes the repositories to one transaction.
type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Users() store.Users       { return &usersRepo{db: t.tx} }
func (t *txStore) Sessions() store.Sessions { return &sessionsRepo{db: t.tx} }
