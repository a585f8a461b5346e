package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/shop-service/internal/apperr"
)

func strp(s string) *string { return &s }

func TestCreateProductRequest_Validate(t *testing.T) {
	ok := CreateProductRequest{SKU: "A-1", Name: "Mouse", Price: decimal.RequireFromString("9.99"), Category: "peripherals"}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Name = " "
	assert.ErrorIs(t, bad.Validate(), apperr.ErrValidation)

	bad = ok
	bad.Price = decimal.RequireFromString("-1")
	assert.ErrorIs(t, bad.Validate(), apperr.ErrValidation)

	bad = ok
	bad.Price = decimal.RequireFromString("1.999")
	assert.ErrorIs(t, bad.Validate(), apperr.ErrValidation)

	trailing := ok
	trailing.Price = decimal.RequireFromString("1.500")
	assert.NoError(t, trailing.Validate())
}

func TestUpdateProductRequest_Patch(t *testing.T) {
	_, err := UpdateProductRequest{}.Patch()
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = UpdateProductRequest{Name: strp("")}.Patch()
	assert.ErrorIs(t, err, apperr.ErrValidation)

	price := decimal.RequireFromString("12.50")
	patch, err := UpdateProductRequest{Price: &price}.Patch()
	require.NoError(t, err)
	assert.Nil(t, patch.Name)
	assert.Nil(t, patch.SKU)
	require.NotNil(t, patch.Price)
	assert.True(t, patch.Price.Equal(price))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_x`, escapeLike("50% off_x"))
}

func TestValidID(t *testing.T) {
	if !validID("4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a") {
		t.Fatal("uuid rejected")
	}
	for _, id := range []string{"", "p1", "4e7d4e5c-5cb9"} {
		if validID(id) {
			t.Fatalf("%q accepted", id)
		}
	}
}
