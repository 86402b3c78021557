package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rowanvale/liveset/internal/schema"
)

// ClassInfo is the JSON shape of one declared class.
type ClassInfo struct {
	Name       string         `json:"name"`
	Primitive  bool           `json:"primitive,omitempty"`
	Type       string         `json:"type,omitempty"` // primitive classes only
	Properties []PropertyInfo `json:"properties,omitempty"`
}

// PropertyInfo is the JSON shape of one declared property.
type PropertyInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Validate and display the schema",
		Long: `Load the schema directory, validate every class declaration, and
display the declared classes and their properties.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, cmd)
		},
	}

	return cmd
}

func runSchema(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	set, err := schema.Load(opts.SchemaDir)
	if err != nil {
		_ = formatter.Error("SCHEMA", err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	infos := make([]ClassInfo, 0, len(set.Classes))
	for _, c := range set.Classes {
		info := ClassInfo{Name: c.Name, Primitive: c.Primitive}
		if c.Primitive {
			info.Type = string(c.ElementType())
		} else {
			for _, p := range c.Properties {
				info.Properties = append(info.Properties, PropertyInfo{
					Name:     p.Name,
					Type:     string(p.Type),
					Optional: p.Optional,
				})
			}
		}
		infos = append(infos, info)
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	for _, info := range infos {
		if info.Primitive {
			fmt.Fprintf(formatter.Writer, "%s (primitive %s)\n", info.Name, info.Type)
			continue
		}
		fmt.Fprintf(formatter.Writer, "%s\n", info.Name)
		for _, p := range info.Properties {
			optional := ""
			if p.Optional {
				optional = " optional"
			}
			fmt.Fprintf(formatter.Writer, "  %-16s %s%s\n", p.Name, p.Type, optional)
		}
	}
	return nil
}
