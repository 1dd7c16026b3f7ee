package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erraggy/ramltools/raml"
)

type treeOptions struct {
	format   string
	method   string
	maxDepth int
}

// treeEntry is one resolved resource in structured tree output.
type treeEntry struct {
	Path        string   `json:"path"                   yaml:"path"`
	Method      string   `json:"method,omitempty"       yaml:"method,omitempty"`
	Depth       int      `json:"depth"                  yaml:"depth"`
	AbsoluteURI string   `json:"absolute_uri,omitempty" yaml:"absolute_uri,omitempty"`
	Type        string   `json:"type,omitempty"         yaml:"type,omitempty"`
	Traits      []string `json:"traits,omitempty"       yaml:"traits,omitempty"`
	SecuredBy   []string `json:"secured_by,omitempty"   yaml:"secured_by,omitempty"`
	Responses   []string `json:"responses,omitempty"    yaml:"responses,omitempty"`
}

func registerTreeCmd(parent *cobra.Command, gf *globalFlags) {
	opts := &treeOptions{}

	cmd := &cobra.Command{
		Use:   "tree <file|->",
		Short: "Print the resolved resource tree",
		Long: `Walk the resolved resource tree depth first and print one line per
resource and method, with the resource type, traits and security schemes that
were applied to it.`,
		Example: `  ramltools tree api.raml
  ramltools tree --method get --max-depth 1 api.raml
  ramltools tree -f json api.raml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, gf, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatText, "Output format (text, json, yaml)")
	cmd.Flags().StringVarP(&opts.method, "method", "m", "", "only show resources with this HTTP method")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", -1, "do not descend below this nesting depth (-1 for no limit)")

	parent.AddCommand(cmd)
}

func runTree(cmd *cobra.Command, gf *globalFlags, opts *treeOptions, specPath string) error {
	if err := ValidateOutputFormat(opts.format); err != nil {
		return err
	}
	result, err := loadDocument(cmd, gf, specPath)
	if err != nil {
		return err
	}
	if result.Root == nil {
		return fmt.Errorf("%s is a %s fragment and has no resources", FormatSpecPath(specPath), result.Fragment)
	}

	entries := collectTree(result.Root, opts)
	out := cmd.OutOrStdout()
	if opts.format != FormatText {
		return OutputStructured(out, entries, opts.format)
	}

	Writef(out, "%s\n", result.Root.Title)
	for _, e := range entries {
		Writef(out, "%s%-7s %s%s\n", strings.Repeat("  ", e.Depth+1), orDash(strings.ToUpper(e.Method)), e.Path, annotations(e))
	}
	return nil
}

func collectTree(root *raml.RootNode, opts *treeOptions) []treeEntry {
	var entries []treeEntry
	root.Walk(func(res *raml.ResourceNode, depth int) raml.Action {
		if opts.method == "" || strings.EqualFold(opts.method, res.Method) {
			entries = append(entries, newTreeEntry(res, depth))
		}
		if opts.maxDepth >= 0 && depth >= opts.maxDepth {
			return raml.SkipChildren
		}
		return raml.Continue
	})
	return entries
}

func newTreeEntry(res *raml.ResourceNode, depth int) treeEntry {
	e := treeEntry{
		Path:        res.Path,
		Method:      res.Method,
		Depth:       depth,
		AbsoluteURI: res.AbsoluteURI,
		Type:        res.TypeName,
		Traits:      res.Is,
		SecuredBy:   res.SecuredBy,
	}
	for _, r := range res.Responses {
		e.Responses = append(e.Responses, r.RawCode)
	}
	return e
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// annotations renders the applied type, traits and schemes of e.
func annotations(e treeEntry) string {
	var parts []string
	if e.Type != "" {
		parts = append(parts, "type: "+e.Type)
	}
	if len(e.Traits) > 0 {
		parts = append(parts, "is: "+strings.Join(e.Traits, ", "))
	}
	if len(e.SecuredBy) > 0 {
		parts = append(parts, "securedBy: "+strings.Join(e.SecuredBy, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  [" + strings.Join(parts, "; ") + "]"
}
