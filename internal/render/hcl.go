package render

import (
	"io"
	"strconv"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/genmaths/internal/analysis"
	"github.com/zclconf/go-cty/cty"
)

// WriteHCL prints the plan as HCL:
//
//	method "Lerp" {
//	  symbol = "mathx.Lerp"
//	  step "1" {
//	    values   = ["(b - a)"]
//	    required = ["b", "a"]
//	  }
//	}
func WriteHCL(w io.Writer, results []*analysis.Result) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, m := range NewPlan(results).Methods {
		if i > 0 {
			root.AppendNewline()
		}
		body := root.AppendNewBlock("method", []string{m.Name}).Body()
		body.SetAttributeValue("symbol", cty.StringVal(m.Symbol))
		body.SetAttributeValue("source", cty.StringVal(m.Source))
		body.SetAttributeValue("types", tuple(m.Types))

		if m.Error != nil {
			eb := body.AppendNewBlock("error", nil).Body()
			eb.SetAttributeValue("code", cty.StringVal(m.Error.Code))
			eb.SetAttributeValue("message", cty.StringVal(m.Error.Message))
			continue
		}

		body.SetAttributeValue("params", tuple(m.Params))
		for _, v := range m.Variables {
			vb := body.AppendNewBlock("variable", []string{v.Name}).Body()
			vb.SetAttributeValue("value", cty.StringVal(v.Value))
		}
		for _, s := range m.Steps {
			sb := body.AppendNewBlock("step", []string{strconv.Itoa(s.Number)}).Body()
			sb.SetAttributeValue("values", tuple(s.Values))
			sb.SetAttributeValue("required", tuple(s.Required))
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func tuple(items []string) cty.Value {
	if len(items) == 0 {
		return cty.EmptyTupleVal
	}
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.TupleVal(vals)
}
