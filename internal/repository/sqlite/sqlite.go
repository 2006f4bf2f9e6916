// Package sqlite implements the repository interfaces on SQLite.
//
// The system keeps two separate stores, matching how the data is owned:
// the identity store (users, projects, orders) and the catalog store
// (faqs, rewards). Both use the pure-Go modernc.org/sqlite driver and are
// migrated with goose from SQL files embedded in the binary.
package sqlite

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// open creates a connection pool with the pragmas every store needs:
// WAL for concurrent reads during writes, foreign keys on, a busy timeout so
// competing writers queue instead of failing, and immediate transactions so
// a read-then-write transaction takes its write lock up front (the order
// debit depends on this).
func open(dbPath, migrationDir string) (*sql.DB, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection; pin the pool to one so
	// the migrated schema is the one every query sees.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting migration dialect: %w", err)
	}
	if err := goose.Up(conn, migrationDir); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return conn, nil
}

// IdentityDB is the users + projects + orders store. The per-entity
// repositories hang off it as sub-stores sharing one connection pool.
type IdentityDB struct {
	conn     *sql.DB
	users    *UserStore
	projects *ProjectStore
	orders   *OrderStore
}

// NewIdentity opens (and migrates) the identity store.
// Use ":memory:" for tests.
func NewIdentity(dbPath string) (*IdentityDB, error) {
	conn, err := open(dbPath, "migrations/identity")
	if err != nil {
		return nil, err
	}
	return &IdentityDB{
		conn:     conn,
		users:    &UserStore{conn: conn},
		projects: &ProjectStore{conn: conn},
		orders:   &OrderStore{conn: conn},
	}, nil
}

// Users implements repository.UserRepository.
func (db *IdentityDB) Users() *UserStore { return db.users }

// Projects implements repository.ProjectRepository.
func (db *IdentityDB) Projects() *ProjectStore { return db.projects }

// Orders implements repository.OrderRepository.
func (db *IdentityDB) Orders() *OrderStore { return db.orders }

func (db *IdentityDB) Close() error {
	return db.conn.Close()
}

// CatalogDB is the faqs + rewards store. It implements
// repository.FAQRepository and RewardRepository.
type CatalogDB struct {
	conn *sql.DB
}

// NewCatalog opens (and migrates) the catalog store.
func NewCatalog(dbPath string) (*CatalogDB, error) {
	conn, err := open(dbPath, "migrations/catalog")
	if err != nil {
		return nil, err
	}
	return &CatalogDB{conn: conn}, nil
}

func (db *CatalogDB) Close() error {
	return db.conn.Close()
}
