package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/apperrors"

	"gorm.io/gorm"
)

// ErrStaleWrite is returned by conditional writes whose guard no longer matched.
var ErrStaleWrite = fmt.Errorf("%w: record was modified concurrently", apperrors.ErrConflict)

// translate maps gorm sentinel errors onto the application taxonomy.
// Requires gorm.Config.TranslateError for duplicate detection.
func translate(err error, kind, id string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(kind, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict("%s %s already exists", kind, id)
	default:
		return err
	}
}
