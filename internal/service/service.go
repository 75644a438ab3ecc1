// Package service implements the application's business logic on top of the
// store. Handlers translate HTTP to these calls; services own validation,
// authorization scoping, and error semantics.
package service

import (
	"github.com/archivistapp/archivist-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()
