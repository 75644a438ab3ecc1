package importer

// Status classifies an import run as a whole.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// Outcome is the client-facing report for one import run. Errors preserves
// encounter order: parse diagnostics first, then reconciliation failures.
type Outcome struct {
	Status  Status   `json:"status"`
	Message string   `json:"message"`
	Summary Summary  `json:"summary"`
	Errors  []string `json:"errors,omitempty"`
}

// Report folds a parse result and reconciliation counters into an Outcome.
// A run that changed anything is a success, or a partial success when
// diagnostics were also collected. A run that changed nothing is an error
// even when every record merely matched what was already stored.
func Report(parse ParseResult, summary Summary, reconcileErrs []string) Outcome {
	errs := make([]string, 0, len(parse.Errors)+len(reconcileErrs))
	errs = append(errs, parse.Errors...)
	errs = append(errs, reconcileErrs...)
	if len(errs) == 0 {
		errs = nil
	}

	changed := summary.Changed()

	switch {
	case changed > 0 && len(errs) > 0:
		return Outcome{
			Status:  StatusPartial,
			Message: "Import completed with warnings.",
			Summary: summary,
			Errors:  errs,
		}
	case changed > 0:
		return Outcome{
			Status:  StatusSuccess,
			Message: "Import completed successfully.",
			Summary: summary,
		}
	default:
		return Outcome{
			Status:  StatusError,
			Message: "No shelves or products were imported.",
			Summary: summary,
			Errors:  errs,
		}
	}
}
