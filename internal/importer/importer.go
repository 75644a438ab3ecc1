package importer

import (
	"context"
	"log/slog"
)

// MaxDocumentBytes caps the accepted upload size.
const MaxDocumentBytes = 1 << 20

// Importer runs the full pipeline against one user's catalog.
type Importer struct {
	reconciler *Reconciler
}

func New(catalog Catalog, vocab Vocabulary, logger *slog.Logger) *Importer {
	return &Importer{reconciler: NewReconciler(catalog, vocab, logger)}
}

// Run parses the document, reconciles whatever survived validation, and
// reports the combined outcome. The error return covers only catalog or
// vocabulary read failures before any write happened; everything else is
// captured inside the Outcome.
func (im *Importer) Run(ctx context.Context, data []byte) (Outcome, error) {
	parse := ParseDocument(data)

	summary, reconcileErrs, err := im.reconciler.Reconcile(ctx, parse.Shelves)
	if err != nil {
		return Outcome{}, err
	}

	return Report(parse, summary, reconcileErrs), nil
}
