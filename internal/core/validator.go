package core

import (
	"context"
	"errors"
)

// ErrNameExists reports a creation-time name collision.
var ErrNameExists = errors.New("product name already exists")

// UniqueNameValidator checks candidate product names against the store at
// creation time. Edits of an existing product skip this check: the
// product's own name is trivially present.
type UniqueNameValidator struct {
	store *ProductStore
}

// NewUniqueNameValidator binds the validator to the store.
func NewUniqueNameValidator(store *ProductStore) *UniqueNameValidator {
	return &UniqueNameValidator{store: store}
}

// Validate returns ErrNameExists when a product already carries exactly the
// candidate name. An empty candidate is valid here; the required-field
// check belongs to the caller.
func (v *UniqueNameValidator) Validate(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.store.CheckExistingName(name) {
		return ErrNameExists
	}
	return nil
}
