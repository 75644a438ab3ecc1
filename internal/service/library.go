package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/archivistapp/archivist-server/internal/domain"
	domainerrors "github.com/archivistapp/archivist-server/internal/errors"
	"github.com/archivistapp/archivist-server/internal/id"
	"github.com/archivistapp/archivist-server/internal/importer"
	"github.com/archivistapp/archivist-server/internal/store"
	"github.com/archivistapp/archivist-server/internal/validation"
)

// LibraryService manages a user's catalog: shelves and products.
type LibraryService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(st *store.Store, logger *slog.Logger) *LibraryService {
	return &LibraryService{store: st, logger: logger}
}

// ProductView is a product together with its lending state.
type ProductView struct {
	domain.Product
	ActiveLoan *domain.Loan `json:"active_loan,omitempty"`
}

// ShelfView is a shelf with its products.
type ShelfView struct {
	domain.Shelf
	Products []ProductView `json:"products"`
}

// LibraryView is the full catalog tree returned to clients.
type LibraryView struct {
	Library domain.Library `json:"library"`
	Shelves []ShelfView    `json:"shelves"`
}

// PulseStats summarizes catalog activity for the home page card.
type PulseStats struct {
	TotalShelves         int            `json:"total_shelves"`
	TotalProducts        int            `json:"total_products"`
	AddedLast7Days       int            `json:"added_last_7_days"`
	MostActiveShelf      string         `json:"most_active_shelf,omitempty"`
	MostActiveShelfCount int            `json:"most_active_shelf_count,omitempty"`
	ProductsByType       map[string]int `json:"products_by_type"`
	ActiveLoans          int            `json:"active_loans"`
	OverdueLoans         int            `json:"overdue_loans"`
}

// CreateShelfRequest names a new shelf.
type CreateShelfRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateProductRequest describes a new product.
type CreateProductRequest struct {
	Name   string `json:"name" validate:"required"`
	Type   string `json:"type" validate:"required"`
	Year   int    `json:"year" validate:"required"`
	Artist string `json:"artist,omitempty"`
}

// UpdateProductRequest carries changed product fields.
type UpdateProductRequest struct {
	Name   string `json:"name" validate:"required"`
	Type   string `json:"type" validate:"required"`
	Year   int    `json:"year" validate:"required"`
	Artist string `json:"artist,omitempty"`
}

// libraryFor resolves the caller's library.
func (s *LibraryService) libraryFor(ctx context.Context, userID string) (*domain.Library, error) {
	library, err := s.store.LibraryForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("library not found")
		}
		return nil, fmt.Errorf("lookup library: %w", err)
	}
	return library, nil
}

// shelfFor resolves a shelf and verifies it belongs to the caller's library.
func (s *LibraryService) shelfFor(ctx context.Context, userID, shelfID string) (*domain.Library, *domain.Shelf, error) {
	library, err := s.libraryFor(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	shelf, err := s.store.Shelves.Get(ctx, shelfID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.NotFound("shelf not found")
		}
		return nil, nil, fmt.Errorf("lookup shelf: %w", err)
	}
	if shelf.LibraryID != library.ID {
		// Hide other users' shelf IDs.
		return nil, nil, domainerrors.NotFound("shelf not found")
	}
	return library, shelf, nil
}

// productFor resolves a product and verifies ownership through its shelf.
func (s *LibraryService) productFor(ctx context.Context, userID, productID string) (*domain.Product, error) {
	library, err := s.libraryFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := s.store.Products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("product not found")
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}

	shelf, err := s.store.Shelves.Get(ctx, product.ShelfID)
	if err != nil {
		return nil, fmt.Errorf("lookup shelf: %w", err)
	}
	if shelf.LibraryID != library.ID {
		return nil, domainerrors.NotFound("product not found")
	}
	return product, nil
}

// GetLibrary returns the caller's full catalog tree, shelves and products
// sorted by name, with active loans attached.
func (s *LibraryService) GetLibrary(ctx context.Context, userID string) (*LibraryView, error) {
	library, err := s.libraryFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	shelves, err := s.store.ShelvesForLibrary(ctx, library.ID)
	if err != nil {
		return nil, err
	}

	view := &LibraryView{Library: *library, Shelves: make([]ShelfView, 0, len(shelves))}
	for _, shelf := range shelves {
		products, err := s.store.ProductsForShelf(ctx, shelf.ID)
		if err != nil {
			return nil, err
		}

		shelfView := ShelfView{Shelf: shelf, Products: make([]ProductView, 0, len(products))}
		for _, product := range products {
			pv := ProductView{Product: product}
			loan, err := s.store.ActiveLoanForProduct(ctx, product.ID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("lookup loan: %w", err)
			}
			if loan != nil {
				pv.ActiveLoan = loan
			}
			shelfView.Products = append(shelfView.Products, pv)
		}
		view.Shelves = append(view.Shelves, shelfView)
	}

	return view, nil
}

// Pulse computes the activity summary for the caller's library.
func (s *LibraryService) Pulse(ctx context.Context, userID string) (*PulseStats, error) {
	library, err := s.libraryFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	shelves, err := s.store.ShelvesForLibrary(ctx, library.ID)
	if err != nil {
		return nil, err
	}

	stats := &PulseStats{
		TotalShelves:   len(shelves),
		ProductsByType: make(map[string]int),
	}

	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)
	mostActive := 0
	for _, shelf := range shelves {
		products, err := s.store.ProductsForShelf(ctx, shelf.ID)
		if err != nil {
			return nil, err
		}
		count := len(products)
		stats.TotalProducts += count
		recent := 0
		for _, product := range products {
			stats.ProductsByType[product.Type]++
			if product.CreatedAt.After(weekAgo) {
				recent++
			}

			loan, err := s.store.ActiveLoanForProduct(ctx, product.ID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("lookup loan: %w", err)
			}
			stats.ActiveLoans++
			if loan.IsOverdue(now) {
				stats.OverdueLoans++
			}
		}

		stats.AddedLast7Days += recent

		// Most active shelf is the fullest one, lowest name on ties.
		if count > mostActive || (count == mostActive && count > 0 && shelf.Name < stats.MostActiveShelf) {
			mostActive = count
			stats.MostActiveShelf = shelf.Name
		}
	}
	stats.MostActiveShelfCount = mostActive

	return stats, nil
}

// CreateShelf adds a shelf to the caller's library.
func (s *LibraryService) CreateShelf(ctx context.Context, userID string, req CreateShelfRequest) (*domain.Shelf, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if !validation.IsValidShelfName(name) {
		return nil, domainerrors.Validationf("shelf name must be %d-%d characters and start with a letter or digit",
			validation.ShelfNameMin, validation.ShelfNameMax)
	}

	library, err := s.libraryFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	shelves, err := s.store.ShelvesForLibrary(ctx, library.ID)
	if err != nil {
		return nil, err
	}
	if len(shelves) >= importer.MaxShelves {
		return nil, domainerrors.Conflict(fmt.Sprintf("library is full (max %d shelves)", importer.MaxShelves))
	}

	shelfID, err := id.Generate("shf")
	if err != nil {
		return nil, fmt.Errorf("generate shelf ID: %w", err)
	}

	now := time.Now().UTC()
	shelf := &domain.Shelf{
		ID:        shelfID,
		LibraryID: library.ID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Shelves.Create(ctx, shelfID, shelf); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a shelf with this name already exists")
		}
		return nil, fmt.Errorf("create shelf: %w", err)
	}

	s.logger.Info("shelf created", "shelf_id", shelfID, "user_id", userID)
	return shelf, nil
}

// DeleteShelf removes a shelf and everything on it.
func (s *LibraryService) DeleteShelf(ctx context.Context, userID, shelfID string) error {
	_, shelf, err := s.shelfFor(ctx, userID, shelfID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteShelfCascade(ctx, shelf.ID); err != nil {
		return fmt.Errorf("delete shelf: %w", err)
	}
	return nil
}

// CreateProduct adds a product to a shelf. The type must exist in the
// current vocabulary.
func (s *LibraryService) CreateProduct(ctx context.Context, userID, shelfID string, req CreateProductRequest) (*domain.Product, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	fields, err := s.normalizeProductFields(ctx, req.Name, req.Type, req.Year, req.Artist, nil)
	if err != nil {
		return nil, err
	}

	_, shelf, err := s.shelfFor(ctx, userID, shelfID)
	if err != nil {
		return nil, err
	}

	products, err := s.store.ProductsForShelf(ctx, shelf.ID)
	if err != nil {
		return nil, err
	}
	if len(products) >= importer.MaxProductsPerShelf {
		return nil, domainerrors.Conflict(fmt.Sprintf("shelf is full (max %d products)", importer.MaxProductsPerShelf))
	}

	productID, err := id.Generate("prd")
	if err != nil {
		return nil, fmt.Errorf("generate product ID: %w", err)
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:        productID,
		ShelfID:   shelf.ID,
		Name:      fields.name,
		Type:      fields.typeName,
		Year:      fields.year,
		Artist:    fields.artist,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Products.Create(ctx, productID, product); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a product with this name already exists on this shelf")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("product created", "product_id", productID, "shelf_id", shelf.ID)
	return product, nil
}

// UpdateProduct changes a product's fields. A type no longer in the
// vocabulary is accepted only when it matches the product's stored type.
func (s *LibraryService) UpdateProduct(ctx context.Context, userID, productID string, req UpdateProductRequest) (*domain.Product, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	product, err := s.productFor(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	fields, err := s.normalizeProductFields(ctx, req.Name, req.Type, req.Year, req.Artist, product)
	if err != nil {
		return nil, err
	}

	product.Name = fields.name
	product.Type = fields.typeName
	product.Year = fields.year
	product.Artist = fields.artist
	product.UpdatedAt = time.Now().UTC()

	if err := s.store.Products.Update(ctx, productID, product); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a product with this name already exists on this shelf")
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a product and its loan history.
func (s *LibraryService) DeleteProduct(ctx context.Context, userID, productID string) error {
	product, err := s.productFor(ctx, userID, productID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteProductCascade(ctx, product.ID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// AllowedTypes returns the current vocabulary as a set of match keys.
func (s *LibraryService) AllowedTypes(ctx context.Context) (map[string]struct{}, error) {
	allowed := make(map[string]struct{})
	for t, err := range s.store.ProductTypes.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list product types: %w", err)
		}
		allowed[domain.MatchKey(t.Name)] = struct{}{}
	}
	return allowed, nil
}

type productFields struct {
	name     string
	typeName string
	year     int
	artist   string
}

// normalizeProductFields trims and validates product fields. When existing
// is non-nil the type check allows a retired type that matches the stored
// one.
func (s *LibraryService) normalizeProductFields(ctx context.Context, name, typeName string, year int, artist string, existing *domain.Product) (productFields, error) {
	var out productFields

	out.name = strings.TrimSpace(name)
	if !validation.IsValidProductName(out.name) {
		return out, domainerrors.Validationf("product name must be %d-%d characters and start with a letter or digit",
			validation.ProductNameMin, validation.ProductNameMax)
	}

	out.typeName = strings.TrimSpace(typeName)
	if !validation.IsValidProductType(out.typeName) {
		return out, domainerrors.Validation("product type is invalid")
	}

	allowed, err := s.AllowedTypes(ctx)
	if err != nil {
		return out, err
	}
	if _, ok := allowed[domain.MatchKey(out.typeName)]; !ok {
		grandfathered := existing != nil && existing.Type == out.typeName
		if !grandfathered {
			return out, domainerrors.Validationf("unsupported product type %q", out.typeName)
		}
	}

	if !validation.IsValidProductYear(year) {
		return out, domainerrors.Validationf("year must be between %d and %d",
			validation.ProductYearMin, validation.ProductYearMax())
	}
	out.year = year

	out.artist = strings.TrimSpace(artist)
	if out.artist != "" && !validation.IsValidArtistName(out.artist) {
		return out, domainerrors.Validation("artist name is invalid")
	}

	return out, nil
}
