package service

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

func initValidator() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so messages line up with the request body.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	spanish := es.New()
	translator, _ = ut.New(spanish, spanish).GetTranslator("es")
	if err := es_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic("service: register validator translations: " + err.Error())
	}
}

// Validate runs the struct's `validate` tags and converts failures into a
// *ValidationError with Spanish messages keyed by JSON field name.
func Validate(v any) error {
	validateOnce.Do(initValidator)

	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fe.Translate(translator)
	}
	return &ValidationError{Fields: fields}
}
