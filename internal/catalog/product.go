// Package catalog is the client for the remote clothing catalog service.
//
// The service exposes two read-only queries, GET /search?q=<text> and
// GET /recommend?id=<id>, both answering with a JSON array of product
// records. The client validates each record at the boundary so that the
// rest of the program never sees a product without the fields it renders.
package catalog

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

// ProductID identifies a product. It is stable across search and recommend
// results. The service emits numeric ids; the client keeps them as opaque
// strings.
type ProductID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
// Integral floats ("15970.0") are normalized to their integer form.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("catalog: id is neither string nor number: %s", data)
	}
	if i, err := n.Int64(); err == nil {
		*id = ProductID(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("catalog: invalid numeric id %q: %w", n, err)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		*id = ProductID(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*id = ProductID(n.String())
	return nil
}

// String returns the id as sent on the wire.
func (id ProductID) String() string {
	return string(id)
}

// Attribute is an informational product field. It decodes from any JSON
// scalar; numbers keep their literal text (integral floats lose the ".0").
// Arrays, objects and null decode to "" so a record is never rejected over
// a field the client only displays.
type Attribute string

// UnmarshalJSON never fails on well-formed JSON.
func (a *Attribute) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = ""
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*a = Attribute(strings.TrimSpace(s))
		}
	case 't', 'f':
		*a = Attribute(data)
	case '[', '{', 'n':
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return nil
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			*a = Attribute(strconv.FormatInt(int64(f), 10))
			return nil
		}
		*a = Attribute(data)
	}
	return nil
}

// String returns the attribute text.
func (a Attribute) String() string {
	return string(a)
}

// Product is a single catalog entry. The first five fields are required and
// are what the client renders; the rest are informational.
type Product struct {
	ID          ProductID `json:"id" validate:"required"`
	DisplayName string    `json:"productDisplayName" validate:"required"`
	Category    string    `json:"masterCategory" validate:"required"`
	Color       string    `json:"baseColour" validate:"required"`
	Image       string    `json:"image" validate:"required"`

	ArticleType Attribute `json:"articleType,omitempty"`
	Gender      Attribute `json:"gender,omitempty"`
	Season      Attribute `json:"season,omitempty"`
	Year        Attribute `json:"year,omitempty"`
	Usage       Attribute `json:"usage,omitempty"`
}

// Details returns the optional descriptive fields that are present, in a
// fixed order.
func (p Product) Details() []string {
	var out []string
	for _, a := range []Attribute{p.ArticleType, p.Gender, p.Season, p.Year, p.Usage} {
		if a != "" {
			out = append(out, a.String())
		}
	}
	return out
}

// Clone returns a fresh copy of the sequence. Never nil.
func Clone(products []Product) []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// Contains reports whether a product with the given id is in the sequence.
func Contains(products []Product, id ProductID) bool {
	for _, p := range products {
		if p.ID == id {
			return true
		}
	}
	return false
}

// decodeProducts parses a response body into products and validates every
// record. A single bad record rejects the whole response.
func decodeProducts(v *validator.Validate, body []byte) ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for i := range products {
		if err := v.Struct(&products[i]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, describeValidation(err))
		}
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// describeValidation turns validator output into a short message naming the
// JSON fields that were missing.
func describeValidation(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("missing required field(s) %v", fields)
}

// newValidator builds a validator that reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}
