package config

import (
	"fmt"
	"strconv"

	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/render"
	"github.com/xyproto/env/v2"
)

// Environment variables read by ApplyEnv.
const (
	EnvPossibleTypes = "GENMATHS_POSSIBLE_TYPES"
	EnvRefold        = "GENMATHS_REFOLD"
	EnvWorkers       = "GENMATHS_WORKERS"
	EnvFormat        = "GENMATHS_FORMAT"
)

// ApplyEnv applies the GENMATHS_* variables that are set on top of o. The
// environment is read afresh on every call.
func (o *Options) ApplyEnv() error {
	env.Load()

	if env.Has(EnvPossibleTypes) {
		types, err := numeric.ParseList(env.Str(EnvPossibleTypes))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPossibleTypes, err)
		}
		o.PossibleTypes = types
	}
	if env.Has(EnvRefold) {
		o.Refold = env.Bool(EnvRefold)
	}
	if env.Has(EnvWorkers) {
		n, err := strconv.Atoi(env.Str(EnvWorkers))
		if err != nil {
			return fmt.Errorf("%s: not a number: %q", EnvWorkers, env.Str(EnvWorkers))
		}
		o.Workers = n
	}
	if env.Has(EnvFormat) {
		f, err := render.ParseFormat(env.Str(EnvFormat))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFormat, err)
		}
		o.Format = f
	}
	return nil
}
