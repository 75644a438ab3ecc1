// Package store persists the catalog in a Badger key-value database.
//
// Each record is stored as JSON under a typed key prefix, with secondary
// index keys alongside. Name uniqueness inside a library is enforced by
// unique indexes keyed on the parent ID plus the normalized name, so
// concurrent creates of the same name fail like any other duplicate.
package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/archivistapp/archivist-server/internal/domain"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Users        *Entity[domain.User]
	Libraries    *Entity[domain.Library]
	Shelves      *Entity[domain.Shelf]
	Products     *Entity[domain.Product]
	Loans        *Entity[domain.Loan]
	ProductTypes *Entity[domain.ProductType]
	Sessions     *Entity[domain.Session]
}

// New creates a new Store instance backed by the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initUsers()
	store.initLibraries()
	store.initShelves()
	store.initProducts()
	store.initLoans()
	store.initProductTypes()
	store.initSessions()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// normalizeEmail lowercases an email for case-insensitive matching.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// scopedName builds a unique index value from a parent ID and a name, so
// names only collide within the same parent.
func scopedName(parentID, name string) string {
	return parentID + ":" + domain.MatchKey(name)
}

// initUsers initializes the Users entity.
// Uses case-insensitive email indexing via normalizeEmail transformation.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithUniqueIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail,
		)
}

// initLibraries initializes the Libraries entity. Each user owns exactly one
// library, enforced by the unique user index.
func (s *Store) initLibraries() {
	s.Libraries = NewEntity[domain.Library](s, "library:").
		WithUniqueIndex("user", func(l *domain.Library) []string {
			return []string{l.UserID}
		})
}

// initShelves initializes the Shelves entity. Shelf names are unique within
// a library, case-insensitively.
func (s *Store) initShelves() {
	s.Shelves = NewEntity[domain.Shelf](s, "shelf:").
		WithIndex("library", func(sh *domain.Shelf) []string {
			return []string{sh.LibraryID}
		}).
		WithUniqueIndex("library_name", func(sh *domain.Shelf) []string {
			return []string{scopedName(sh.LibraryID, sh.Name)}
		})
}

// initProducts initializes the Products entity. Product names are unique
// within a shelf, case-insensitively.
func (s *Store) initProducts() {
	s.Products = NewEntity[domain.Product](s, "product:").
		WithIndex("shelf", func(p *domain.Product) []string {
			return []string{p.ShelfID}
		}).
		WithUniqueIndex("shelf_name", func(p *domain.Product) []string {
			return []string{scopedName(p.ShelfID, p.Name)}
		})
}

// initLoans initializes the Loans entity. The active index only exists while
// the loan is open, which limits each product to one active loan and makes
// the open loan a single-key lookup.
func (s *Store) initLoans() {
	s.Loans = NewEntity[domain.Loan](s, "loan:").
		WithIndex("user", func(l *domain.Loan) []string {
			return []string{l.UserID}
		}).
		WithUniqueIndex("active_product", func(l *domain.Loan) []string {
			if l.ReturnedAt != nil {
				return nil
			}
			return []string{l.ProductID}
		})
}

// initSessions initializes the Sessions entity. Refresh tokens are looked
// up by hash; the user index supports revoking all of a user's sessions.
func (s *Store) initSessions() {
	s.Sessions = NewEntity[domain.Session](s, "session:").
		WithIndex("user", func(sn *domain.Session) []string {
			return []string{sn.UserID}
		}).
		WithUniqueIndex("token", func(sn *domain.Session) []string {
			return []string{sn.RefreshTokenHash}
		})
}

// initProductTypes initializes the ProductTypes entity with a
// case-insensitive unique name index.
func (s *Store) initProductTypes() {
	s.ProductTypes = NewEntity[domain.ProductType](s, "ptype:").
		WithUniqueIndexTransform("name",
			func(t *domain.ProductType) []string {
				return []string{domain.MatchKey(t.Name)}
			},
			domain.MatchKey,
		)
}
