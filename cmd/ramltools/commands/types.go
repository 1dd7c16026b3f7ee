package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erraggy/ramltools/datatype"
)

type typesOptions struct {
	format string
}

// typeEntry describes one declared data type.
type typeEntry struct {
	Name       string          `json:"name"                 yaml:"name"`
	Kind       string          `json:"kind"                 yaml:"kind"`
	Base       string          `json:"base,omitempty"       yaml:"base,omitempty"`
	Properties []propertyEntry `json:"properties,omitempty" yaml:"properties,omitempty"`
	Subtypes   []string        `json:"subtypes,omitempty"   yaml:"subtypes,omitempty"`
}

type propertyEntry struct {
	Name     string `json:"name"     yaml:"name"`
	Type     string `json:"type"     yaml:"type"`
	Required bool   `json:"required" yaml:"required"`
}

func registerTypesCmd(parent *cobra.Command, gf *globalFlags) {
	opts := &typesOptions{}

	cmd := &cobra.Command{
		Use:   "types <file|->",
		Short: "List the data types a RAML 1.0 document declares",
		Example: `  ramltools types api.raml
  ramltools types -f json person.raml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(cmd, gf, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatText, "Output format (text, json, yaml)")

	parent.AddCommand(cmd)
}

func runTypes(cmd *cobra.Command, gf *globalFlags, opts *typesOptions, specPath string) error {
	if err := ValidateOutputFormat(opts.format); err != nil {
		return err
	}
	result, err := loadDocument(cmd, gf, specPath)
	if err != nil {
		return err
	}

	var entries []typeEntry
	switch {
	case result.Root != nil:
		for _, dt := range result.Root.Types {
			e := newTypeEntry(dt)
			e.Subtypes = result.Root.TypeRegistry.Subtypes(e.Name)
			entries = append(entries, e)
		}
	case result.DataType != nil:
		entries = append(entries, newTypeEntry(result.DataType))
	}

	out := cmd.OutOrStdout()
	if opts.format != FormatText {
		return OutputStructured(out, entries, opts.format)
	}
	if len(entries) == 0 {
		Writef(out, "No types declared\n")
		return nil
	}
	for _, e := range entries {
		Writef(out, "%s (%s)", orDash(e.Name), e.Kind)
		if e.Base != "" && e.Base != e.Kind {
			Writef(out, " extends %s", e.Base)
		}
		Writef(out, "\n")
		for _, p := range e.Properties {
			marker := ""
			if !p.Required {
				marker = "?"
			}
			Writef(out, "  %s%s: %s\n", p.Name, marker, p.Type)
		}
		if len(e.Subtypes) > 0 {
			Writef(out, "  subtypes: %s\n", strings.Join(e.Subtypes, ", "))
		}
	}
	return nil
}

func newTypeEntry(dt datatype.DataType) typeEntry {
	info := dt.Info()
	e := typeEntry{
		Name: info.Name,
		Kind: dt.Kind().String(),
		Base: info.TypeName,
	}
	if obj, ok := dt.(*datatype.Object); ok {
		for _, p := range obj.Properties {
			e.Properties = append(e.Properties, propertyEntry{
				Name:     p.Name,
				Type:     describeType(p.Type),
				Required: p.Required,
			})
		}
	}
	return e
}

// describeType names a property type by its declared name or expression.
func describeType(dt datatype.DataType) string {
	if dt == nil {
		return "any"
	}
	info := dt.Info()
	if info.Name != "" {
		return info.Name
	}
	if info.TypeName != "" {
		return info.TypeName
	}
	return fmt.Sprint(dt.Kind())
}
