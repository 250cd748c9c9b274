package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/mnemo/internal/model"
)

var validate = validator.New()

// flagNames maps struct fields to the CLI flags that set them.
var flagNames = map[string]string{
	"Category": "--category",
	"From":     "--from",
	"To":       "--to",
	"Budget":   "--budget",
}

// ValidateDrill checks a resolved drill configuration.
func ValidateDrill(cfg model.DrillConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	name := flagNames[fe.Field()]
	if name == "" {
		name = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return name + " must not be empty"
	case "gte":
		if fe.Field() == "Budget" {
			return name + " must be at least 0.1 seconds"
		}
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}
