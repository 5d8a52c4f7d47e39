// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ConfigFileName is the name of the configuration file. It is never treated
// as an HCL input even when it sits inside an input directory.
const ConfigFileName = "genmaths.hcl"

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
// Directories the Go tool ignores (hidden, underscore-prefixed, testdata,
// vendor) are skipped.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && IgnoredDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// IgnoredDir reports whether a directory is skipped when searching for
// inputs.
func IgnoredDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata" || name == "vendor"
}

// Inputs is the set of analysis inputs found under a list of paths.
type Inputs struct {
	// GoDirs are directories holding at least one non-test .go file.
	GoDirs []string
	// HCLFiles are .hcl files other than the configuration file.
	HCLFiles []string
}

// All returns every directory and file of the inputs.
func (in *Inputs) All() []string {
	return append(append([]string(nil), in.GoDirs...), in.HCLFiles...)
}

// Discover walks paths and collects Go package directories and HCL files.
// A path may name a directory, a .go file (its directory is used) or an
// .hcl file. Results are sorted and free of duplicates. A path that does
// not exist is an error.
func Discover(paths ...string) (*Inputs, error) {
	goDirs := make(map[string]struct{})
	hclFiles := make(map[string]struct{})

	addGo := func(file string) {
		if !strings.HasSuffix(file, "_test.go") {
			goDirs[filepath.Dir(file)] = struct{}{}
		}
	}
	addHCL := func(file string) {
		if filepath.Base(file) != ConfigFileName {
			hclFiles[file] = struct{}{}
		}
	}

	for _, path := range paths {
		path = filepath.Clean(path)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			switch filepath.Ext(path) {
			case ".go":
				addGo(path)
			case ".hcl":
				addHCL(path)
			default:
				return nil, fmt.Errorf("%s is neither a Go nor an HCL file", path)
			}
			continue
		}

		goFiles, err := FindFilesByExtension(path, ".go")
		if err != nil {
			return nil, err
		}
		for _, f := range goFiles {
			addGo(f)
		}
		hcl, err := FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range hcl {
			addHCL(f)
		}
	}

	return &Inputs{GoDirs: sortedKeys(goDirs), HCLFiles: sortedKeys(hclFiles)}, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
