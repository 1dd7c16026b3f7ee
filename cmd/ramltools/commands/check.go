package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/erraggy/ramltools/datatype"
	"github.com/erraggy/ramltools/loader"
	"github.com/erraggy/ramltools/ramlerrors"
)

type checkOptions struct {
	typeName string
	format   string
}

// checkReport is the structured output of the check command.
type checkReport struct {
	Valid    bool   `json:"valid"              yaml:"valid"`
	Type     string `json:"type"               yaml:"type"`
	Position string `json:"position,omitempty" yaml:"position,omitempty"`
	Reason   string `json:"reason,omitempty"   yaml:"reason,omitempty"`
	// ResolvedType names the subtype a discriminator selected, when it
	// differs from Type.
	ResolvedType string `json:"resolved_type,omitempty" yaml:"resolved_type,omitempty"`
}

func registerCheckCmd(parent *cobra.Command, gf *globalFlags) {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <raml-file> <instance-file|->",
		Short: "Check a JSON or YAML value against a RAML data type",
		Long: `Validate an instance document against a data type. The type is a named
type declared in the RAML document (--type), or the document itself when it is
a DataType fragment. The instance is read as YAML, which includes JSON.`,
		Example: `  ramltools check --type Book api.raml book.json
  ramltools check person.raml person.yaml
  echo '{"name": "Ada"}' | ramltools check person.raml -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, gf, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&opts.typeName, "type", "t", "", "name of the declared type to check against")
	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatText, "Output format (text, json, yaml)")

	parent.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, gf *globalFlags, opts *checkOptions, specPath, instancePath string) error {
	if err := ValidateOutputFormat(opts.format); err != nil {
		return err
	}
	if specPath == StdinFilePath {
		return fmt.Errorf("the RAML document cannot be read from stdin; use '-' for the instance")
	}

	result, err := loadDocument(cmd, gf, specPath)
	if err != nil {
		return err
	}

	var dt datatype.DataType
	switch {
	case opts.typeName != "":
		if result.Root == nil {
			return fmt.Errorf("%s declares no named types", specPath)
		}
		var ok bool
		if dt, ok = result.Root.TypeRegistry.Lookup(opts.typeName); !ok {
			return fmt.Errorf("type %q is not declared in %s", opts.typeName, specPath)
		}
	case result.DataType != nil:
		dt = result.DataType
	default:
		return fmt.Errorf("--type is required unless %s is a DataType fragment", specPath)
	}

	instance, err := readInstance(cmd.InOrStdin(), instancePath)
	if err != nil {
		return err
	}

	position := dt.Info().Name
	if position == "" {
		position = "instance"
	}
	report := checkReport{Valid: true, Type: position}

	err = datatype.Validate(dt, instance, position)
	var violation *ramlerrors.DataTypeValidationError
	switch {
	case err == nil:
		if target, _ := dt.Info().Registry().Discriminate(dt, instance); target != nil && target != dt {
			report.ResolvedType = target.Info().Name
		}
	case errors.As(err, &violation):
		report.Valid = false
		report.Position = violation.Position
		report.Reason = fmt.Sprintf("%v %s", violation.Value, violation.Reason)
	default:
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format != FormatText {
		if err := OutputStructured(out, report, opts.format); err != nil {
			return err
		}
	} else if report.Valid && report.ResolvedType != "" {
		Writef(out, "✓ %s conforms to %s as %s\n", FormatSpecPath(instancePath), report.Type, report.ResolvedType)
	} else if report.Valid {
		Writef(out, "✓ %s conforms to %s\n", FormatSpecPath(instancePath), report.Type)
	} else {
		Writef(out, "✗ %s: %s\n", report.Position, report.Reason)
	}
	if !report.Valid {
		return ErrValidationFailed
	}
	return nil
}

// readInstance decodes the YAML or JSON value at path ("-" reads stdin).
func readInstance(stdin io.Reader, path string) (any, error) {
	var data []byte
	var err error
	if path == StdinFilePath {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading instance %s: %w", FormatSpecPath(path), err)
	}

	instance, err := loader.New().DecodeValue(data, path)
	if err != nil {
		return nil, fmt.Errorf("decoding instance %s: %w", FormatSpecPath(path), err)
	}
	return instance, nil
}
