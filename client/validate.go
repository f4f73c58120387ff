package client

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("client: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	if err := validate.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
		return filepath.IsAbs(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})
}

// uploadInput holds the arguments of [Client.AddTemplate].
type uploadInput struct {
	LocalPath string `json:"localPath" validate:"required,abspath"`
}

// templateRef holds a template identifier argument.
type templateRef struct {
	TemplateID string `json:"templateId" validate:"required"`
}

// saveInput holds the arguments of [Client.SaveTemplate].
type saveInput struct {
	TemplateID string `json:"templateId" validate:"required"`
	DestPath   string `json:"destPath" validate:"required"`
}

// check validates val against its declared tags and returns a
// *ValidationError describing every failing field.
func check(val any) error {
	if err := validate.Struct(val); err != nil {
		var verrors validator.ValidationErrors
		if !errors.As(err, &verrors) {
			return err
		}

		var fields FieldErrors
		for _, verror := range verrors {
			field := FieldError{
				Field: verror.Field(),
				Err:   customErrForTag(verror.Tag(), verror),
			}
			fields = append(fields, field)
		}
		return &ValidationError{Fields: fields}
	}

	return nil
}

func customErrForTag(tag string, verror validator.FieldError) string {
	switch tag {
	case "required":
		return "This field is required"
	case "abspath":
		return "must be an absolute path"
	default:
		return verror.Translate(translator)
	}
}
