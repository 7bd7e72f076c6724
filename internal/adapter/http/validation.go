package http

import (
	"reflect"
	"strings"
	"sync"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// registerValidators adds the custom binding rules to gin's validator.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// report json names instead of Go field names
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
			return domain.Status(strings.ToLower(strings.TrimSpace(fl.Field().String()))).Valid()
		})
	})
}
