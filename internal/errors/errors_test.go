package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderCarriesCategoryAndContext(t *testing.T) {
	t.Parallel()

	err := Newf("sheets update failed: row %d", 7).
		Category(CategorySheets).
		Component("sheets").
		Context("row_index", 7).
		Build()

	assert.Equal(t, "sheets update failed: row 7", err.Error())
	assert.Equal(t, string(CategorySheets), err.GetCategory())
	assert.Equal(t, "sheets", err.GetComponent())
	assert.Equal(t, 7, err.GetContext()["row_index"])
	assert.True(t, IsCategory(err, CategorySheets))
	assert.False(t, IsCategory(err, CategoryNetwork))
}

func TestWrappingPreservesCause(t *testing.T) {
	t.Parallel()

	cause := NewStd("underlying failure")
	err := New(cause).Category(CategoryReconcile).Build()

	assert.True(t, Is(err, cause))
	assert.Equal(t, cause, Unwrap(err))
	assert.True(t, IsCategory(err, CategoryReconcile))
}

func TestNotFoundHelper(t *testing.T) {
	t.Parallel()

	err := NotFoundError("employee not found: %s", "ghost@test")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "ghost@test")
}

func TestValidationHelper(t *testing.T) {
	t.Parallel()

	err := ValidationError("hours out of range")
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
}

func TestEnhancedErrorAs(t *testing.T) {
	t.Parallel()

	err := Newf("boom").Category(CategoryGeneric).Build()

	var enhanced *EnhancedError
	require.True(t, As(err, &enhanced))
	assert.Equal(t, string(CategoryGeneric), enhanced.GetCategory())
}
