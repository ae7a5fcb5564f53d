// Package validation checks request DTOs and reports failures keyed by the
// JSON field name, with one message list per field.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

var (
	once  sync.Once
	v     *validator.Validate
	trans ut.Translator
)

var messages = map[string]string{
	"required": "This field is required.",
	"email":    "Enter a valid email address.",
	"max":      "Ensure this field has no more than {0} characters.",
	"maxbytes": "Ensure this field has no more than {0} bytes.",
	"min":      "Ensure this field has at least {0} characters.",
}

func setup() {
	v = validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// maxbytes=N limits the UTF-8 length of a string; max counts runes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= n
	})

	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ = uni.GetTranslator("en")

	for tag, text := range messages {
		tag, text := tag, text
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, err := t.T(tag, fe.Param())
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		)
	}
}

// Validator returns the shared instance.
func Validator() *validator.Validate {
	once.Do(setup)
	return v
}

// Struct validates s. On failure it returns a *domain.Error whose Fields hold
// the translated messages per JSON field.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrInternal(err)
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if name == "" {
			name = domain.FieldNonField
		}
		fields[name] = append(fields[name], fe.Translate(trans))
	}
	return domain.ErrFieldErrors(fields)
}
