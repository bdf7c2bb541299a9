package dashboard

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"rfid-console/internal/domain"
)

// Field limits enforced before any request is sent.
const (
	maxProductName        = 120
	maxProductBarcode     = 64
	maxProductRfidTag     = 128
	maxProductDescription = 500
	minUnitWeight         = 0.001

	maxShelfName    = 100
	minShelfWeight  = 0.1
	minShelfMinimum = 0.1
)

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := slices.Sorted(maps.Keys(e))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// ProductFields is the editable content of the product form.
type ProductFields struct {
	Name        string
	Barcode     string
	RfidTag     string
	Description string
	UnitWeight  float64
}

func (f ProductFields) trimmed() ProductFields {
	f.Name = strings.TrimSpace(f.Name)
	f.Barcode = strings.TrimSpace(f.Barcode)
	f.RfidTag = strings.TrimSpace(f.RfidTag)
	f.Description = strings.TrimSpace(f.Description)
	return f
}

func (f ProductFields) request() domain.ProductRegisterRequest {
	return domain.ProductRegisterRequest{
		Name:        f.Name,
		Barcode:     f.Barcode,
		RfidTag:     f.RfidTag,
		Description: f.Description,
		UnitWeight:  f.UnitWeight,
		Esp32ID:     domain.Esp32Stock,
	}
}

func productFieldsOf(p domain.Product) ProductFields {
	return ProductFields{
		Name:        p.Name,
		Barcode:     p.Barcode,
		RfidTag:     p.RfidTag,
		Description: p.Description,
		UnitWeight:  p.UnitWeight,
	}
}

// ValidateProduct checks f, already trimmed, against the form rules.
func ValidateProduct(f ProductFields) FieldErrors {
	errs := FieldErrors{}
	requiredMax(errs, "name", f.Name, maxProductName)
	requiredMax(errs, "barcode", f.Barcode, maxProductBarcode)
	requiredMax(errs, "rfidTag", f.RfidTag, maxProductRfidTag)
	if utf8.RuneCountInString(f.Description) > maxProductDescription {
		errs["description"] = fmt.Sprintf("at most %d characters", maxProductDescription)
	}
	if !atLeast(f.UnitWeight, minUnitWeight) {
		errs["unitWeight"] = fmt.Sprintf("must be at least %g", minUnitWeight)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ShelfFields is the editable content of the shelf form.
type ShelfFields struct {
	Name         string
	MaxWeight    float64
	MinThreshold float64
}

func (f ShelfFields) trimmed() ShelfFields {
	f.Name = strings.TrimSpace(f.Name)
	return f
}

func (f ShelfFields) request() domain.ShelfRequest {
	return domain.ShelfRequest{Name: f.Name, MaxWeight: f.MaxWeight, MinThreshold: f.MinThreshold}
}

// ValidateShelf checks f, already trimmed, against the form rules.
func ValidateShelf(f ShelfFields) FieldErrors {
	errs := FieldErrors{}
	requiredMax(errs, "name", f.Name, maxShelfName)
	if !atLeast(f.MaxWeight, minShelfWeight) {
		errs["maxWeight"] = fmt.Sprintf("must be at least %g", minShelfWeight)
	}
	if !atLeast(f.MinThreshold, minShelfMinimum) {
		errs["minThreshold"] = fmt.Sprintf("must be at least %g", minShelfMinimum)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func requiredMax(errs FieldErrors, field, v string, limit int) {
	switch {
	case v == "":
		errs[field] = "required"
	case utf8.RuneCountInString(v) > limit:
		errs[field] = fmt.Sprintf("at most %d characters", limit)
	}
}

// atLeast reports whether v is a finite number no smaller than limit.
func atLeast(v, limit float64) bool {
	return v >= limit && !math.IsInf(v, 0)
}
