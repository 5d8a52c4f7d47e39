package render

import (
	"encoding/json"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/vk/genmaths/internal/analysis"
)

// WriteJSON prints the plan as indented JSON.
func WriteJSON(w io.Writer, results []*analysis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewPlan(results))
}

// WriteTOML prints the plan as TOML, one [[method]] table per result.
func WriteTOML(w io.Writer, results []*analysis.Result) error {
	return toml.NewEncoder(w).Encode(NewPlan(results))
}
