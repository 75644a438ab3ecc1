package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/archivistapp/archivist-server/internal/domain"
	domainerrors "github.com/archivistapp/archivist-server/internal/errors"
	"github.com/archivistapp/archivist-server/internal/id"
	"github.com/archivistapp/archivist-server/internal/importer"
	"github.com/archivistapp/archivist-server/internal/store"
)

// ImportService runs bulk imports against a user's library.
type ImportService struct {
	store    *store.Store
	library  *LibraryService
	maxBytes int64
	logger   *slog.Logger
}

// NewImportService creates a new import service. maxBytes caps the accepted
// document size.
func NewImportService(st *store.Store, library *LibraryService, maxBytes int64, logger *slog.Logger) *ImportService {
	if maxBytes <= 0 {
		maxBytes = importer.MaxDocumentBytes
	}
	return &ImportService{store: st, library: library, maxBytes: maxBytes, logger: logger}
}

// Import validates the upload, then parses and reconciles it into the
// caller's library. Per-record problems are reported inside the Outcome;
// the error return covers rejected uploads and store-level failures.
func (s *ImportService) Import(ctx context.Context, userID, filename string, data []byte) (*importer.Outcome, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".json") {
		return nil, domainerrors.Validation("only .json files can be imported")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, domainerrors.Validationf("file exceeds the %d byte limit", s.maxBytes)
	}

	library, err := s.library.libraryFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	im := importer.New(
		&catalogAdapter{store: s.store, library: library},
		vocabularyFunc(s.library.AllowedTypes),
		s.logger,
	)

	outcome, err := im.Run(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	s.logger.Info("import finished",
		"user_id", userID,
		"status", outcome.Status,
		"shelves_created", outcome.Summary.ShelvesCreated,
		"products_created", outcome.Summary.ProductsCreated,
		"products_updated", outcome.Summary.ProductsUpdated,
		"errors", len(outcome.Errors),
	)
	return &outcome, nil
}

// vocabularyFunc adapts a function to importer.Vocabulary.
type vocabularyFunc func(ctx context.Context) (map[string]struct{}, error)

func (f vocabularyFunc) AllowedTypes(ctx context.Context) (map[string]struct{}, error) {
	return f(ctx)
}

// catalogAdapter exposes one library to the reconciliation engine.
type catalogAdapter struct {
	store   *store.Store
	library *domain.Library
}

func (c *catalogAdapter) Snapshot(ctx context.Context) ([]importer.CatalogShelf, error) {
	shelves, err := c.store.ShelvesForLibrary(ctx, c.library.ID)
	if err != nil {
		return nil, err
	}

	out := make([]importer.CatalogShelf, 0, len(shelves))
	for _, shelf := range shelves {
		products, err := c.store.ProductsForShelf(ctx, shelf.ID)
		if err != nil {
			return nil, err
		}

		cs := importer.CatalogShelf{
			ID:       shelf.ID,
			Name:     shelf.Name,
			Products: make([]importer.CatalogProduct, 0, len(products)),
		}
		for _, p := range products {
			cs.Products = append(cs.Products, importer.CatalogProduct{
				ID:   p.ID,
				Name: p.Name,
				Type: p.Type,
				Year: p.Year,
			})
		}
		out = append(out, cs)
	}
	return out, nil
}

func (c *catalogAdapter) CreateShelf(ctx context.Context, name string) (string, error) {
	shelfID, err := id.Generate("shf")
	if err != nil {
		return "", fmt.Errorf("generate shelf ID: %w", err)
	}

	now := time.Now().UTC()
	shelf := &domain.Shelf{
		ID:        shelfID,
		LibraryID: c.library.ID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.store.Shelves.Create(ctx, shelfID, shelf); err != nil {
		return "", err
	}
	return shelfID, nil
}

func (c *catalogAdapter) CreateProduct(ctx context.Context, shelfID string, p importer.Product) (string, error) {
	productID, err := id.Generate("prd")
	if err != nil {
		return "", fmt.Errorf("generate product ID: %w", err)
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:        productID,
		ShelfID:   shelfID,
		Name:      p.Name,
		Type:      p.Type,
		Year:      p.Year,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.store.Products.Create(ctx, productID, product); err != nil {
		return "", err
	}
	return productID, nil
}

func (c *catalogAdapter) UpdateProduct(ctx context.Context, productID string, p importer.Product) error {
	product, err := c.store.Products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("product %s vanished during import", productID)
		}
		return err
	}

	product.Name = p.Name
	product.Type = p.Type
	product.Year = p.Year
	product.UpdatedAt = time.Now().UTC()

	return c.store.Products.Update(ctx, productID, product)
}
