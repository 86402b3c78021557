package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rowanvale/liveset"
	"github.com/rowanvale/liveset/internal/schema"
	"github.com/rowanvale/liveset/sqlite"
)

// openStore loads the schema directory and opens the database.
func openStore(opts *RootOptions) (*sqlite.Store, error) {
	set, err := schema.Load(opts.SchemaDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading schema", err)
	}
	st, err := sqlite.Open(opts.DBPath, set)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening database", err)
	}
	return st, nil
}

// errorCode maps an error to the code shown in CLI output.
func errorCode(err error) string {
	var lsErr *liveset.Error
	if errors.As(err, &lsErr) {
		return string(lsErr.Code)
	}
	return "ERROR"
}

// parseArg converts a command-line query argument to a typed value.
// Integers, floats, and booleans are recognized; everything else stays a
// string.
func parseArg(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// parseSortSpec converts a comma-separated sort specification to
// descriptor pairs: "name,-age" sorts by name ascending, then age
// descending. A bare "-" prefix marks descending order.
func parseSortSpec(spec string) []any {
	var out []any
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		descending := strings.HasPrefix(part, "-")
		out = append(out, []any{strings.TrimPrefix(part, "-"), descending})
	}
	return out
}
