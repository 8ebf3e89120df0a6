package request

import (
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
	validate = validator.New()
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("request: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
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

// check validates a descriptor's fields against their declared tags and
// flattens any failures into a single human-readable message.
func check(val any) (string, bool) {
	err := validate.Struct(val)
	if err == nil {
		return "", true
	}

	verrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error(), false
	}

	parts := make([]string, len(verrors))
	for i, verror := range verrors {
		parts[i] = verror.Field() + ": " + customErrForTag(verror.Tag(), verror)
	}
	return strings.Join(parts, "; "), false
}

func customErrForTag(tag string, verror validator.FieldError) string {
	switch tag {
	case "required":
		return "This field is required"
	case "oneof":
		return "must be one of GET, POST, PUT, DELETE"
	default:
		return verror.Translate(translator)
	}
}
