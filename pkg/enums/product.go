package enums

import (
	"fmt"
	"strings"
)

// ProductCategory is the scent family a candle is listed under.
type ProductCategory string

const (
	ProductCategorySignature ProductCategory = "Signature"
	ProductCategoryFresh     ProductCategory = "Fresh"
	ProductCategoryFloral    ProductCategory = "Floral"
	ProductCategoryWoody     ProductCategory = "Woody"
)

// ProductCategoryAll is the storefront filter value meaning "no filter".
const ProductCategoryAll = "All"

var validProductCategories = []ProductCategory{
	ProductCategorySignature,
	ProductCategoryFresh,
	ProductCategoryFloral,
	ProductCategoryWoody,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory, ignoring case.
func ParseProductCategory(value string) (ProductCategory, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validProductCategories {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
