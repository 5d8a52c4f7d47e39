// Package config resolves the run options of genmaths.
//
// Options are layered, each layer overriding the one before it: built-in
// defaults, the genmaths.hcl file, GENMATHS_* environment variables and
// finally command-line flags (applied by the cli package). A Go package may
// still override the target types for its own methods with a
// //genmaths:types directive.
package config
