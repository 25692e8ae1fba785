package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatching(t *testing.T) {
	t.Run("validation error", func(t *testing.T) {
		err := fmt.Errorf("create: %w", NewValidationError("sku", "must not be empty"))
		assert.ErrorIs(t, err, &ValidationError{})
		assert.Equal(t, "create: sku: must not be empty", err.Error())

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "sku", verr.Field)
	})

	t.Run("not found", func(t *testing.T) {
		err := fmt.Errorf("get: %w", NewNotFoundError(42))
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "id=42")
		assert.False(t, IsNotFound(errors.New("product not found")))
	})

	t.Run("duplicate sku", func(t *testing.T) {
		err := NewDuplicateSKUError("SKU-001")
		assert.True(t, IsDuplicateSKU(err))
		assert.ErrorIs(t, err, &DuplicateSKUError{})
		assert.NotErrorIs(t, err, &ConflictError{})
	})

	t.Run("conflict and unauthorized", func(t *testing.T) {
		assert.ErrorIs(t, NewConflictError("SKU already exists"), &ConflictError{})
		assert.ErrorIs(t, NewUnauthorizedError("nope"), &UnauthorizedError{})
	})
}

func TestProductApply(t *testing.T) {
	name := "Keyboard"
	qty := 3
	p := Product{ID: 1, Name: "Mouse", SKU: "SKU-001", Quantity: 10}

	p.Apply(ProductUpdate{Name: &name, Quantity: &qty})

	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "Keyboard", p.Name)
	assert.Equal(t, "SKU-001", p.SKU)
	assert.Equal(t, 3, p.Quantity)
}

func TestProductUpdateColumns(t *testing.T) {
	sku := "SKU-009"
	cols := ProductUpdate{SKU: &sku}.Columns()
	assert.Equal(t, map[string]interface{}{"sku": "SKU-009"}, cols)
	assert.Empty(t, ProductUpdate{}.Columns())
	assert.True(t, ProductUpdate{}.IsEmpty())
}
