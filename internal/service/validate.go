package service

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/car-rental/internal/domain"
)

// minCarYear is the oldest model year the inventory accepts.
const minCarYear = 1990

// phonePattern matches Vietnamese mobile numbers: 0 followed by a carrier
// prefix digit and eight more digits.
var phonePattern = regexp.MustCompile(`^0[35789][0-9]{8}$`)

// checker wraps a validator with the custom rules used by car and booking
// inputs. Field names in reported errors are the JSON names.
type checker struct {
	v *validator.Validate
}

func newChecker(now func() time.Time) *checker {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("caryear", func(fl validator.FieldLevel) bool {
		y := fl.Field().Int()
		return y >= minCarYear && y <= int64(now().Year()+1)
	})
	_ = v.RegisterValidation("imageref", func(fl validator.FieldLevel) bool {
		return isImageRef(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return &checker{v: v}
}

// isImageRef accepts an absolute http(s) URL or a root-relative path such as
// /attached_assets/stock_images/x.jpg.
func isImageRef(s string) bool {
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return !strings.ContainsAny(s, " \t\n")
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// check validates s and converts any failure into a *domain.ValidationError.
func (c *checker) check(s any) error {
	err := c.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	out := &domain.ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, domain.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "notblank":
		return fe.Field() + " must not be blank"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "caryear":
		return fmt.Sprintf("year must be between %d and next year", minCarYear)
	case "imageref":
		return "image must be an http(s) URL or a root-relative path"
	case "phone":
		return "customerPhone is not a valid phone number"
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// merge appends the fields of extra to err, creating a ValidationError when
// err is nil. extra may be nil.
func merge(err error, extra *domain.ValidationError) error {
	if extra == nil {
		return err
	}
	if err == nil {
		return extra
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		verr.Fields = append(verr.Fields, extra.Fields...)
		return verr
	}
	return err
}
