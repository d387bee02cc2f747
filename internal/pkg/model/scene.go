package model

// Scene is a named group of units, scenes/<slug>.json.
// The units field lists unit slugs or glob patterns, for example "porch-*".
type Scene struct {
	Slug        string   `json:"-" validate:"required,slug"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Units       []string `json:"units" validate:"required,min=1,dive,required"`
}
