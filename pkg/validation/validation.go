package validation

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vinodismyname/mcpeda/pkg/pagination"
)

var (
	v          *validator.Validate
	columnName = regexp.MustCompile(`^[^\x00-\x1f]{1,128}$`)
)

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	if v == nil {
		v = validator.New()
		// Custom: dataset path must have a supported workbook extension
		_ = v.RegisterValidation("filepath_ext", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return false
			}
			s = strings.ToLower(s)
			return strings.HasSuffix(s, ".xlsx") || strings.HasSuffix(s, ".xlsm") || strings.HasSuffix(s, ".xltx") || strings.HasSuffix(s, ".xltm")
		})
		// Custom: a plausible column name (printable, bounded length)
		_ = v.RegisterValidation("colname", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // empty is allowed; use required separately when mandatory
			}
			return columnName.MatchString(s)
		})
		// Custom: selection strategy enum
		_ = v.RegisterValidation("strategy", func(fl validator.FieldLevel) bool {
			switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
			case "", "forward", "backward", "exhaustive":
				return true
			}
			return false
		})
		// Custom: cursor must be decodable via pagination.DecodeCursor
		_ = v.RegisterValidation("cursor", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // empty is allowed; use omitempty with this tag
			}
			// Quick URL-safe base64 precheck
			if _, err := base64.RawURLEncoding.DecodeString(s); err != nil {
				return false
			}
			if _, err := pagination.DecodeCursor(s); err != nil {
				return false
			}
			return true
		})
	}
	return v
}
