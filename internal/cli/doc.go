// Package cli turns the genmaths command line into an app.Config. It merges
// the configuration file, GENMATHS_* variables and flags into one set of
// options and maps failures onto process exit codes.
package cli
