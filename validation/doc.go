// Package validation validates configuration structs and request input.
//
// Struct tag validation wraps go-playground/validator and reports failures
// as an errors.AppError with per-field details:
//
//	type Config struct {
//	    PullAmount int `json:"pull_amount" validate:"min=1"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic validation collects errors for hand-parsed input such as
// query parameters:
//
//	v := validation.New()
//	v.Min("distance_from_end", d, 0)
//	if err := v.Validate(); err != nil { ... }
package validation
