package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate = validator.New()
	trans    ut.Translator
	initOnce sync.Once
	initErr  error

	iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Init registers the English translations, JSON field names and the custom tags.
// It is safe to call more than once.
func Init() error {
	initOnce.Do(func() {
		initErr = initValidator()
	})

	return initErr
}

func initValidator() error {
	uni := ut.New(en.New(), en.New())
	trans, _ = uni.GetTranslator("en")

	err := enTranslations.RegisterDefaultTranslations(Validate, trans)
	if err != nil {
		return err
	}

	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// iata: three upper-case letters, e.g. SYD
	if err := Validate.RegisterValidation("iata", func(fl validator.FieldLevel) bool {
		return iataPattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}

	return Validate.RegisterTranslation("iata", trans,
		func(ut ut.Translator) error {
			return ut.Add("iata", "{0} must be a 3-letter airport code", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("iata", fe.Field())
			return msg
		},
	)
}

// FieldError is a validation failure scoped to one field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// ValidateSingleError validates req and returns the first failure as a FieldError.
func ValidateSingleError(req interface{}) error {
	if err := Init(); err != nil {
		return err
	}

	if err := Validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return FieldError{
				Field:   fieldPath(ve[0].Namespace()),
				Message: ve[0].Translate(trans),
			}
		}
		return err
	}
	return nil
}

// fieldPath drops the root struct name from a validator namespace:
// "TravelerInfo.contact.email" -> "contact.email".
func fieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return path
}
