package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"ds-clean/internal/cleanup"
	"ds-clean/internal/config"
	"ds-clean/internal/exitcodes"
	"ds-clean/internal/logging"
)

const (
	Usage     = "usage: ds_clean [-v] [directory...]"
	privilege = "Run this command with administrator privileges."
)

// Run executes ds_clean with args (program name excluded) and returns the exit code.
// Only usage text and verbose lines go to stdout; diagnostics go to stderr.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 || len(args) > 2 {
		return usage(stdout)
	}

	switch {
	case strings.HasPrefix(args[0], "-h"):
		fmt.Fprintf(stdout, "%s\n\n", Usage)
		fmt.Fprintln(stdout, " h: Help. Print this message")
		fmt.Fprintln(stdout, " v: Verbose")
		return exitcodes.Success
	case strings.HasPrefix(args[0], "-v") && len(args) == 2 && isPath(args[1]):
		return clean(args[1], true, stdout, stderr)
	case isPath(args[0]):
		return clean(args[0], false, stdout, stderr)
	default:
		return usage(stdout)
	}
}

// isPath accepts only arguments carrying a separator, so bare words are never walked
func isPath(arg string) bool {
	return strings.Contains(arg, "/")
}

func usage(stdout io.Writer) int {
	fmt.Fprintln(stdout, Usage)
	return exitcodes.Success
}

func clean(root string, verbose bool, stdout, stderr io.Writer) int {
	return walk(newCleaner(stdout, stderr), root, verbose, stderr)
}

func newCleaner(stdout, stderr io.Writer) *cleanup.Cleaner {
	cfg := config.Default()
	return cleanup.NewCleaner(logging.New(cfg.Logging, stderr), stdout, cfg, nil)
}

// walk runs one clean and reports a fatal error the way the tool always has
func walk(cleaner *cleanup.Cleaner, root string, verbose bool, stderr io.Writer) int {
	if _, err := cleaner.Clean(root, verbose); err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, cleanup.ErrOpenDirectory) {
			fmt.Fprintln(stderr, privilege)
		}
		return exitcodes.Failure
	}
	return exitcodes.Success
}
