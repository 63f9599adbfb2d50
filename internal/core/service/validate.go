package service

import "github.com/go-playground/validator/v10"

// validate is shared by the services for single-value rule checks.
var validate = validator.New(validator.WithRequiredStructEnabled())
