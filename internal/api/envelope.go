package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the wrapper structure changes.
const envelopeVersion = 1

// Envelope is the uniform response wrapper every endpoint returns.
// Success responses carry data; error responses carry error, code, and
// optionally details.
type Envelope struct {
	V       int    `json:"v" doc:"Envelope format version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload"`
	Error   string `json:"error,omitempty" doc:"Human-readable error message"`
	Code    string `json:"code,omitempty" doc:"Machine-readable error code"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// EnvelopeTransformer wraps every response body in an Envelope. Register it
// on the huma config before creating the API.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch e := v.(type) {
	case *Envelope:
		return e, nil
	case *APIError:
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   e.Message,
			Code:    e.Code,
			Details: e.Details,
		}, nil
	case huma.StatusError:
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   e.Error(),
			Code:    statusToCode(e.GetStatus()),
		}, nil
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
