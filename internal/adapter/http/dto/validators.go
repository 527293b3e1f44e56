package dto

import (
	"errors"
	"html"
	"math/big"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
	bytes32Re    = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	decimalRe    = regexp.MustCompile(`^[0-9]{1,78}$`)

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// ErrInvalidUint256 is returned for ids and amounts that are not unsigned 256-bit decimals.
var ErrInvalidUint256 = errors.New("must be a non-negative 256-bit decimal integer")

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
		_ = v.RegisterValidation("bytes32_hex", validateBytes32Hex)
		_ = v.RegisterValidation("uint256", validateUint256)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// validateBytes32Hex accepts a 0x-prefixed 32-byte hex string.
func validateBytes32Hex(fl validator.FieldLevel) bool {
	return bytes32Re.MatchString(fl.Field().String())
}

func validateUint256(fl validator.FieldLevel) bool {
	_, err := ParseUint256(fl.Field().String())
	return err == nil
}

// ParseUint256 parses a decimal string into a big.Int in [0, 2^256).
func ParseUint256(s string) (*big.Int, error) {
	if !decimalRe.MatchString(s) {
		return nil, ErrInvalidUint256
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Cmp(maxUint256) > 0 {
		return nil, ErrInvalidUint256
	}
	return n, nil
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
