package config

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"voicechess/internal/game"
)

// NewValidator reports fields by their json (or yaml) name and knows the
// "timecontrol" tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})

	_ = v.RegisterValidation("timecontrol", func(fl validator.FieldLevel) bool {
		label := fl.Field().String()
		if label == "" {
			return true
		}
		_, err := game.ParseTimeControl(label)
		return err == nil
	})

	return v
}
