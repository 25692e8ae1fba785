// Package validation normalizes and checks incoming product fields.
// Nothing in this package touches a store.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"inventory/internal/models"
)

const (
	maxNameLength   = 200
	priceFracDigits = 2

	// Exponent window for prices; anything outside it is rejected before any rescaling.
	minPriceExponent = -priceFracDigits - 18
	maxPriceExponent = 8
)

var (
	skuPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

	// numeric(10,2) leaves 8 integer digits.
	priceCeiling = decimal.New(1, 8)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// NormalizeSKU trims and upper-cases a SKU. It does not validate it.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// Name trims the name and checks it is non-empty and at most 200 characters.
func Name(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := check("name", name, fmt.Sprintf("required,max=%d", maxNameLength)); err != nil {
		return "", err
	}
	return name, nil
}

// SKU normalizes the SKU and checks its format.
func SKU(sku string) (string, error) {
	sku = NormalizeSKU(sku)
	if err := check("sku", sku, "required,sku"); err != nil {
		return "", err
	}
	return sku, nil
}

// Price checks the price is non-negative, fits numeric(10,2) and has at most two
// significant fractional digits. Trailing zeros are dropped to the cent.
func Price(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Decimal{}, models.NewValidationError("price", "must not be negative")
	}
	if price.IsZero() {
		return decimal.Zero, nil
	}
	if exp := price.Exponent(); exp < minPriceExponent {
		return decimal.Decimal{}, models.NewValidationError("price", "must have at most 2 decimal places")
	} else if exp > maxPriceExponent {
		return decimal.Decimal{}, models.NewValidationError("price", "must be less than 100000000")
	}
	if !price.Equal(price.Truncate(priceFracDigits)) {
		return decimal.Decimal{}, models.NewValidationError("price", "must have at most 2 decimal places")
	}
	if price.GreaterThanOrEqual(priceCeiling) {
		return decimal.Decimal{}, models.NewValidationError("price", "must be less than 100000000")
	}
	return price.Truncate(priceFracDigits), nil
}

// Quantity checks the quantity is within [0, MaxQuantity].
func Quantity(quantity int) (int, error) {
	if err := check("quantity", quantity, fmt.Sprintf("gte=0,lte=%d", models.MaxQuantity)); err != nil {
		return 0, err
	}
	return quantity, nil
}

// Draft normalizes and validates every field of a new product.
func Draft(d models.ProductDraft) (models.Product, error) {
	var (
		p   models.Product
		err error
	)
	if p.Name, err = Name(d.Name); err != nil {
		return models.Product{}, err
	}
	if p.SKU, err = SKU(d.SKU); err != nil {
		return models.Product{}, err
	}
	if p.Price, err = Price(d.Price); err != nil {
		return models.Product{}, err
	}
	if p.Quantity, err = Quantity(d.Quantity); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Update normalizes and validates only the supplied fields of a partial update.
func Update(u models.ProductUpdate) (models.ProductUpdate, error) {
	var out models.ProductUpdate
	if u.Name != nil {
		name, err := Name(*u.Name)
		if err != nil {
			return models.ProductUpdate{}, err
		}
		out.Name = &name
	}
	if u.SKU != nil {
		sku, err := SKU(*u.SKU)
		if err != nil {
			return models.ProductUpdate{}, err
		}
		out.SKU = &sku
	}
	if u.Price != nil {
		price, err := Price(*u.Price)
		if err != nil {
			return models.ProductUpdate{}, err
		}
		out.Price = &price
	}
	if u.Quantity != nil {
		quantity, err := Quantity(*u.Quantity)
		if err != nil {
			return models.ProductUpdate{}, err
		}
		out.Quantity = &quantity
	}
	return out, nil
}

func check(field string, value interface{}, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError(field, err.Error())
	}
	return models.NewValidationError(field, reason(verrs[0]))
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "sku":
		return "must be 1-64 characters of letters, digits, '.', '-' or '_'"
	case "gte":
		return "must not be negative"
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
