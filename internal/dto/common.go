package dto

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Entity string `json:"entity,omitempty"`
	ID     string `json:"id,omitempty"`
}

// UploadResponse is returned after a file has been stored.
type UploadResponse struct {
	Reference string `json:"reference"`
	URL       string `json:"url"`
}

// RegisterValidators lets the gin validator compare decimal fields with the
// numeric tags (gt, gte, ...).
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
}
