package app

import (
	"fmt"
	"os"
	"strings"
)

// ResolveInput picks a value for a named CI input: an explicit flag value
// wins, then the automation platform's INPUT_<NAME> environment binding,
// then the fallback. Input names are matched the way the platform does it:
// upper-cased with spaces as underscores.
func ResolveInput(flagValue, name, fallback string) string {
	if flagValue != "" {
		return flagValue
	}

	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// Output is one named CI output value
type Output struct {
	Name  string
	Value string
}

// WriteOutputs emits named outputs for the surrounding automation platform.
// When GITHUB_OUTPUT points at a file the key=value lines are appended
// there; otherwise they go to stdout so local runs stay inspectable.
func WriteOutputs(outputs []Output) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		for _, o := range outputs {
			fmt.Printf("%s=%s\n", o.Name, o.Value)
		}
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	for _, o := range outputs {
		if _, err := fmt.Fprintf(f, "%s=%s\n", o.Name, o.Value); err != nil {
			return fmt.Errorf("write output %s: %w", o.Name, err)
		}
	}

	return nil
}

// MissingInputError indicates a required input that was supplied neither as
// a flag nor via the environment. The only error class that may fail the
// surrounding pipeline.
type MissingInputError struct {
	Name string
}

func (e *MissingInputError) Error() string {
	return "missing required input: " + e.Name
}
