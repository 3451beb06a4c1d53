package table

import (
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

// #region validator
var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// relationTags maps each named relation to the validator tag enforcing it.
var relationTags = map[Relation]string{
	RelFinite:      "finite",
	RelPositive:    "finite,gt=0",
	RelNonNegative: "finite,gte=0",
	RelBinary:      "binary",
	RelNonEmpty:    "required",
}

func relationValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			f := fl.Field()
			switch f.Kind() {
			case reflect.Float32, reflect.Float64:
				return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
			}
			return true
		})
		_ = validate.RegisterValidation("binary", func(fl validator.FieldLevel) bool {
			f := fl.Field()
			switch f.Kind() {
			case reflect.Float32, reflect.Float64:
				return f.Float() == 0 || f.Float() == 1
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				return f.Int() == 0 || f.Int() == 1
			}
			return false
		})
	})
	return validate
}

// #endregion validator

// #region check
// Check reports whether value satisfies rel. Blank numeric cells (NaN) are
// not checked; they surface downstream as undetermined measurements.
func Check(rel Relation, value interface{}) error {
	if rel == RelNone {
		return nil
	}
	if f, ok := value.(float64); ok && math.IsNaN(f) {
		return nil
	}
	tag, ok := relationTags[rel]
	if !ok {
		return fmt.Errorf("unknown relation %q", rel)
	}
	if err := relationValidator().Var(value, tag); err != nil {
		return fmt.Errorf("violates %s", rel)
	}
	return nil
}

// #endregion check
