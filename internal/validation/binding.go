package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/shopspring/decimal"
)

// RegisterBindings подключает собственные теги к валидатору gin.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validation: движок gin не является validator.Validate")
	}
	return Register(v)
}

// Register добавляет теги gig_status, plan_tier и decimal, а имена полей берёт из json-тегов.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)

	rules := map[string]validator.Func{
		"gig_status": func(fl validator.FieldLevel) bool {
			return valueobject.GigStatus(fl.Field().String()).IsValid()
		},
		"plan_tier": func(fl validator.FieldLevel) bool {
			return valueobject.PlanTier(fl.Field().String()).IsValid()
		},
		"decimal": func(fl validator.FieldLevel) bool {
			amount, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
			return err == nil && !amount.IsNegative()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("validation: не удалось зарегистрировать %s: %w", tag, err)
		}
	}
	return nil
}

func jsonFieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// MessageFor превращает ошибку биндинга в сообщение для клиента.
func MessageFor(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		messages := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			messages = append(messages, fmt.Sprintf("%s %s", fe.Field(), messageForTag(fe)))
		}
		return strings.Join(messages, "; ")
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "Invalid request body"
	}
	return err.Error()
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return "length should be less or equal than " + fe.Param()
		}
		return "should be less or equal than " + fe.Param()
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return "length should be greater or equal than " + fe.Param()
		}
		return "should be greater or equal than " + fe.Param()
	case "oneof":
		return "should have value in: " + fe.Param()
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "gig_status":
		return "must be a valid gig status"
	case "plan_tier":
		return "must be one of Free, Basic, Pro"
	case "decimal":
		return "must be a non-negative number"
	}
	return "has an incorrect value"
}
