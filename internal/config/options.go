package config

import (
	"errors"
	"fmt"

	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/render"
)

// Options are the settings of one run.
type Options struct {
	// PossibleTypes is the generic_maths_possible_types option: the target
	// types each specialized method is emitted for.
	PossibleTypes []numeric.Type
	// Refold folds constants a second time, after inlining.
	Refold bool
	// Workers bounds how many methods are analyzed at once. Zero means
	// GOMAXPROCS.
	Workers int
	Format  render.Format
	// Emit writes <package>_genmaths.go files for Go packages.
	Emit bool
}

// Defaults returns the built-in options.
func Defaults() Options {
	return Options{
		PossibleTypes: numeric.Default(),
		Refold:        true,
		Format:        render.Text,
	}
}

// Validate checks the options after every layer has been applied.
func (o *Options) Validate() error {
	var errs []error
	if len(o.PossibleTypes) == 0 {
		errs = append(errs, errors.New("generic_maths_possible_types must name at least one type"))
	}
	if o.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", o.Workers))
	}
	if _, err := render.ParseFormat(string(o.Format)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
