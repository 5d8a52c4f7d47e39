package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/fsutil"
	"github.com/vk/genmaths/internal/hclutil"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/render"
)

// FileName is the configuration file looked up in the working directory.
const FileName = fsutil.ConfigFileName

// BlockName is the block of the configuration file holding the options.
const BlockName = "genmaths"

// fileOptions is the body of the genmaths block. Unset attributes keep the
// value of the previous layer.
type fileOptions struct {
	PossibleTypes hcl.Expression `hcl:"generic_maths_possible_types,optional"`
	Refold        *bool          `hcl:"refold,optional"`
	Workers       *int           `hcl:"workers,optional"`
	Format        *string        `hcl:"format,optional"`
	Emit          *bool          `hcl:"emit,optional"`
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: BlockName}},
}

// LoadFile applies the configuration file at path on top of o. Other
// top-level blocks are ignored so the file can share a directory with
// method files. The file is registered in sources when sources is not nil.
func LoadFile(path string, o *Options, sources *diag.Sources) hcl.Diagnostics {
	src, err := os.ReadFile(path)
	if err != nil {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read configuration",
			Detail:   fmt.Sprintf("The configuration file %q could not be read: %s.", path, err),
		}}
	}

	file, diags := hclparse.NewParser().ParseHCL(src, path)
	if sources != nil && file != nil {
		sources.AddFile(path, file)
	}
	if diags.HasErrors() {
		return diags
	}

	content, _, d := file.Body.PartialContent(rootSchema)
	diags = append(diags, d...)
	block, d := hclutil.FindUniqueBlock(content.Blocks, BlockName)
	diags = append(diags, d...)
	if block == nil || diags.HasErrors() {
		return diags
	}

	var fo fileOptions
	diags = append(diags, gohcl.DecodeBody(block.Body, nil, &fo)...)
	if diags.HasErrors() {
		return diags
	}
	return append(diags, fo.apply(o)...)
}

func (fo *fileOptions) apply(o *Options) hcl.Diagnostics {
	var diags hcl.Diagnostics

	// gohcl fills a missing expression attribute with a synthetic one.
	if _, set := fo.PossibleTypes.(hclsyntax.Expression); set {
		types, d := possibleTypes(fo.PossibleTypes)
		diags = append(diags, d...)
		if !d.HasErrors() {
			o.PossibleTypes = types
		}
	}
	if fo.Refold != nil {
		o.Refold = *fo.Refold
	}
	if fo.Workers != nil {
		o.Workers = *fo.Workers
	}
	if fo.Format != nil {
		f, err := render.ParseFormat(*fo.Format)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid format",
				Detail:   err.Error() + ".",
			})
		} else {
			o.Format = f
		}
	}
	if fo.Emit != nil {
		o.Emit = *fo.Emit
	}
	return diags
}

// possibleTypes accepts both the historical comma-separated string and a
// list of type keywords:
//
//	generic_maths_possible_types = "int32, uint8"
//	generic_maths_possible_types = [int32, uint8]
func possibleTypes(expr hcl.Expression) ([]numeric.Type, hcl.Diagnostics) {
	if _, d := hcl.ExprList(expr); !d.HasErrors() {
		return hclutil.TypeList(expr)
	}

	var s string
	if diags := gohcl.DecodeExpression(expr, nil, &s); diags.HasErrors() {
		return nil, diags
	}
	types, err := numeric.ParseList(s)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid generic_maths_possible_types",
			Detail:   err.Error() + ".",
			Subject:  expr.Range().Ptr(),
		}}
	}
	return types, nil
}
