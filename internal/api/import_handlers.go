package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/archivistapp/archivist-server/internal/importer"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "importLibrary",
		Method:       http.MethodPost,
		Path:         "/api/v1/library/import",
		Summary:      "Bulk import",
		Description:  "Parses an uploaded JSON document mapping shelf names to product arrays and reconciles it into the caller's library. Per-record problems are reported in the outcome; the upload is rejected outright only for a bad filename or size.",
		Tags:         []string{"Library"},
		MaxBodyBytes: importer.MaxDocumentBytes + 1,
	}, s.handleImport)
}

// ImportInput carries the raw uploaded document. The filename travels as a
// query parameter since the body is the file itself.
type ImportInput struct {
	Authorization string `header:"Authorization"`
	Filename      string `query:"filename" required:"true" doc:"Original filename, must end in .json"`
	RawBody       []byte
}

// ImportOutput wraps the import outcome for Huma.
type ImportOutput struct {
	Body importer.Outcome
}

func (s *Server) handleImport(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	outcome, err := s.services.Import.Import(ctx, userID, input.Filename, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &ImportOutput{Body: *outcome}, nil
}
