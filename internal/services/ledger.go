package services

import (
	"strings"

	"tally/internal/core"
	"tally/internal/storage"
)

// validatePatch checks the fields a ledger update may change. Nil fields are
// untouched and skip validation.
func validatePatch(p storage.LedgerPatch) error {
	if p.AmountCents != nil && *p.AmountCents < 0 {
		return core.ErrInvalidAmount
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return core.ErrEmptyDescription
	}
	if p.ReferenceID != nil && *p.ReferenceID == "" {
		return core.ErrInvalidReference
	}
	return nil
}
