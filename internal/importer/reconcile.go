package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Vocabulary exposes the set of product types that imports may introduce.
// Keys are normalized with matchKey.
type Vocabulary interface {
	AllowedTypes(ctx context.Context) (map[string]struct{}, error)
}

// CatalogProduct is the engine's view of an existing product.
type CatalogProduct struct {
	ID   string
	Name string
	Type string
	Year int
}

// CatalogShelf is the engine's view of an existing shelf.
type CatalogShelf struct {
	ID       string
	Name     string
	Products []CatalogProduct
}

// Catalog is the persistence surface the engine writes through. Each call is
// an independent best-effort operation; a failure is reported for that record
// and reconciliation moves on.
type Catalog interface {
	Snapshot(ctx context.Context) ([]CatalogShelf, error)
	CreateShelf(ctx context.Context, name string) (string, error)
	CreateProduct(ctx context.Context, shelfID string, p Product) (string, error)
	UpdateProduct(ctx context.Context, productID string, p Product) error
}

// Summary counts what reconciliation actually changed or matched.
type Summary struct {
	ShelvesCreated  int `json:"shelvesCreated"`
	ShelvesMatched  int `json:"shelvesMatched"`
	ProductsCreated int `json:"productsCreated"`
	ProductsUpdated int `json:"productsUpdated"`
}

// Changed reports how many records were written.
func (s Summary) Changed() int {
	return s.ShelvesCreated + s.ProductsCreated + s.ProductsUpdated
}

// Reconciler folds parsed shelves into a user's catalog.
type Reconciler struct {
	catalog Catalog
	vocab   Vocabulary
	logger  *slog.Logger
}

func NewReconciler(catalog Catalog, vocab Vocabulary, logger *slog.Logger) *Reconciler {
	return &Reconciler{catalog: catalog, vocab: vocab, logger: logger}
}

// shelfState tracks one shelf and its product index during reconciliation.
// The index covers both pre-existing products and ones created earlier in
// this run, so repeated names within a single import resolve to updates.
type shelfState struct {
	id       string
	products map[string]*CatalogProduct
}

// Reconcile applies the parsed shelves to the catalog in document order and
// returns the change counts plus per-record failure diagnostics. The error
// return is reserved for precondition failures (snapshot or vocabulary
// reads); once reconciliation starts, nothing is rolled back.
func (r *Reconciler) Reconcile(ctx context.Context, shelves []Shelf) (Summary, []string, error) {
	var summary Summary

	if len(shelves) == 0 {
		return summary, nil, nil
	}

	allowed, err := r.vocab.AllowedTypes(ctx)
	if err != nil {
		return summary, nil, fmt.Errorf("loading product types: %w", err)
	}

	existing, err := r.catalog.Snapshot(ctx)
	if err != nil {
		return summary, nil, fmt.Errorf("loading catalog: %w", err)
	}

	index := make(map[string]*shelfState, len(existing))
	for _, shelf := range existing {
		state := &shelfState{
			id:       shelf.ID,
			products: make(map[string]*CatalogProduct, len(shelf.Products)),
		}
		for i := range shelf.Products {
			p := shelf.Products[i]
			state.products[matchKey(p.Name)] = &p
		}
		index[matchKey(shelf.Name)] = state
	}

	var errs []string

	for _, shelf := range shelves {
		state, ok := index[matchKey(shelf.Name)]
		if ok {
			summary.ShelvesMatched++
		} else {
			id, err := r.catalog.CreateShelf(ctx, shelf.Name)
			if err != nil {
				r.logger.Warn("import: shelf create failed", "shelf", shelf.Name, "error", err)
				errs = append(errs, fmt.Sprintf("Shelf %q could not be created.", shelf.Name))
				continue
			}
			summary.ShelvesCreated++
			state = &shelfState{id: id, products: make(map[string]*CatalogProduct)}
			index[matchKey(shelf.Name)] = state
		}

		for _, product := range shelf.Products {
			r.applyProduct(ctx, state, shelf.Name, product, allowed, &summary, &errs)
		}
	}

	return summary, errs, nil
}

// applyProduct reconciles a single record against its shelf.
func (r *Reconciler) applyProduct(
	ctx context.Context,
	state *shelfState,
	shelfName string,
	product Product,
	allowed map[string]struct{},
	summary *Summary,
	errs *[]string,
) {
	current := state.products[matchKey(product.Name)]

	// An unknown type is rejected unless an existing product already carries
	// exactly that type, which keeps old records updatable after the type was
	// retired from the vocabulary.
	if _, ok := allowed[matchKey(product.Type)]; !ok {
		grandfathered := current != nil && current.Type == product.Type
		if !grandfathered {
			*errs = append(*errs, fmt.Sprintf(
				"Product %q in shelf %q has an unsupported type %q.",
				product.Name, shelfName, product.Type,
			))
			return
		}
	}

	if current != nil {
		if err := r.catalog.UpdateProduct(ctx, current.ID, product); err != nil {
			r.logger.Warn("import: product update failed",
				"shelf", shelfName, "product", product.Name, "error", err)
			*errs = append(*errs, fmt.Sprintf(
				"Product %q in shelf %q could not be updated.", product.Name, shelfName))
			return
		}
		current.Name = product.Name
		current.Type = product.Type
		current.Year = product.Year
		summary.ProductsUpdated++
		return
	}

	id, err := r.catalog.CreateProduct(ctx, state.id, product)
	if err != nil {
		r.logger.Warn("import: product create failed",
			"shelf", shelfName, "product", product.Name, "error", err)
		*errs = append(*errs, fmt.Sprintf(
			"Product %q in shelf %q could not be created.", product.Name, shelfName))
		return
	}
	state.products[matchKey(product.Name)] = &CatalogProduct{
		ID:   id,
		Name: product.Name,
		Type: product.Type,
		Year: product.Year,
	}
	summary.ProductsCreated++
}

// matchKey normalizes a name for case-insensitive matching.
func matchKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
