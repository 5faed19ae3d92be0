package middleware

import (
	"encoding/json" // JSON decoding errors
	"errors"        // Error inspection
	"io"            // Empty body detection
	"reflect"       // Struct field tags
	"strings"       // Tag parsing
	"sync"          // One-time validator setup

	"wallet_api/internal/apperr" // Typed errors
	"wallet_api/internal/domain" // Date parsing

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Gin binding engine
	"github.com/go-playground/validator/v10" // Struct validation
)

var registerOnce sync.Once

// BcryptMaxBytes is the longest password bcrypt accepts
const BcryptMaxBytes = 72

// registerValidator makes field errors report JSON names and adds the flexdate and bcryptmax rules
func registerValidator() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("flexdate", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseDate(fl.Field().String())
			return err == nil
		})
		// bcrypt hashes at most 72 bytes; max= counts runes
		_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) <= BcryptMaxBytes
		})
	})
}

// Validate binds the JSON body into T and stores it for Payload[T].
// A body that does not satisfy T's binding tags ends the request with a 400.
func Validate[T any]() gin.HandlerFunc {
	registerValidator()
	return func(c *gin.Context) {
		payload := new(T)
		// Bind JSON input to the schema
		if err := c.ShouldBindJSON(payload); err != nil {
			Abort(c, bindError(err))
			return
		}
		c.Set(payloadKey, payload)
		c.Next()
	}
}

// bindError turns binding failures into a ValidationError listing the bad fields
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperr.FieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		return apperr.Validation("Validation failed", fields...)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Validation("Validation failed", apperr.FieldError{Field: typeErr.Field, Rule: "type"})
	}
	if errors.Is(err, io.EOF) {
		return apperr.Validation("Request body is empty")
	}
	return apperr.Validation("Malformed request body: " + err.Error())
}
