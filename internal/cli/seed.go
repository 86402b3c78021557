package cli

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rowanvale/liveset/internal/schema"
)

// SeedResult is the JSON shape of a seed run.
type SeedResult struct {
	Inserted map[string]int `json:"inserted"` // class name -> row count
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Insert rows from a YAML seed file",
		Long: `Insert rows described by a YAML seed file. The file maps class names
to element lists; record classes take property maps, primitive classes
take bare values:

	Person:
	  - name: Ada
	    age: 36
	Score:
	  - 10
	  - 12

Decimal properties are written as strings to stay exact.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSeed(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error("SEED", err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading seed file", err)
	}

	var doc map[string][]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		_ = formatter.Error("SEED", err.Error(), nil)
		return WrapExitError(ExitFailure, "parsing seed file", err)
	}

	st, err := openStore(opts)
	if err != nil {
		_ = formatter.Error("OPEN", err.Error(), nil)
		return err
	}
	defer st.Close()

	inserted := make(map[string]int)
	for className, elements := range doc {
		c, ok := st.Schema().Class(className)
		if !ok {
			msg := fmt.Sprintf("unknown class %q in seed file", className)
			_ = formatter.Error("SEED", msg, nil)
			return NewExitError(ExitFailure, msg)
		}

		for i, element := range elements {
			values, err := seedValues(c, element)
			if err != nil {
				msg := fmt.Sprintf("class %s, element %d: %v", className, i, err)
				_ = formatter.Error("SEED", msg, nil)
				return NewExitError(ExitFailure, msg)
			}
			if _, err := st.Insert(cmd.Context(), className, values); err != nil {
				msg := fmt.Sprintf("class %s, element %d: %v", className, i, err)
				_ = formatter.Error("SEED", msg, nil)
				return NewExitError(ExitFailure, msg)
			}
			inserted[className]++
		}
		formatter.VerboseLog("Inserted %d element(s) into %s", inserted[className], className)
	}

	if formatter.Format == "json" {
		return formatter.Success(SeedResult{Inserted: inserted})
	}

	total := 0
	for _, n := range inserted {
		total += n
	}
	fmt.Fprintf(formatter.Writer, "Inserted %d row(s) across %d class(es)\n", total, len(inserted))
	return nil
}

// seedValues converts one YAML element to an insertable value map,
// coercing YAML scalars to the declared property types.
func seedValues(c *schema.Class, element any) (map[string]any, error) {
	if c.Primitive {
		host, err := coerceSeedValue(c.Properties[0], element)
		if err != nil {
			return nil, err
		}
		return map[string]any{schema.PrimitiveValueColumn: host}, nil
	}

	m, ok := element.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a property map, got %T", element)
	}
	values := make(map[string]any, len(m))
	for name, raw := range m {
		p, _, ok := c.Property(name)
		if !ok {
			return nil, fmt.Errorf("class %s has no property %q", c.Name, name)
		}
		host, err := coerceSeedValue(p, raw)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		values[name] = host
	}
	return values, nil
}

// coerceSeedValue bridges YAML's scalar types to a property's declared
// type: YAML integers may fill float columns, timestamp and decimal
// columns accept string literals.
func coerceSeedValue(p schema.Property, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch p.Type {
	case schema.TypeFloat:
		if n, ok := raw.(int); ok {
			return float64(n), nil
		}
	case schema.TypeTimestamp:
		if s, ok := raw.(string); ok {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp %q: %w", s, err)
			}
			return t, nil
		}
	case schema.TypeDecimal:
		switch n := raw.(type) {
		case string:
			r, ok := new(big.Rat).SetString(n)
			if !ok {
				return nil, fmt.Errorf("invalid decimal literal %q", n)
			}
			return r, nil
		case int:
			return new(big.Rat).SetInt64(int64(n)), nil
		case float64:
			return new(big.Rat).SetFloat64(n), nil
		}
	}
	return raw, nil
}
