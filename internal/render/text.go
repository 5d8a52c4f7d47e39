package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vk/genmaths/internal/analysis"
)

// WriteText prints one readable block per method.
func WriteText(w io.Writer, results []*analysis.Result) error {
	var buf bytes.Buffer
	for i, m := range NewPlan(results).Methods {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "method %s (%s) at %s\n", m.Name, m.Symbol, m.Source)
		if len(m.Types) > 0 {
			fmt.Fprintf(&buf, "  types: %s\n", strings.Join(m.Types, ", "))
		}
		if m.Error != nil {
			fmt.Fprintf(&buf, "  failed: %s %s\n", m.Error.Code, m.Error.Message)
			continue
		}
		if len(m.Params) > 0 {
			fmt.Fprintf(&buf, "  params: %s\n", strings.Join(m.Params, ", "))
		}
		for _, v := range m.Variables {
			fmt.Fprintf(&buf, "  %s = %s\n", v.Name, v.Value)
		}
		for _, s := range m.Steps {
			fmt.Fprintf(&buf, "  step %d: %s\n", s.Number, strings.Join(s.Values, ", "))
			if len(s.Required) > 0 {
				fmt.Fprintf(&buf, "    requires: %s\n", strings.Join(s.Required, ", "))
			}
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}
