package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/hashicorp/go-multierror"

	"github.com/tw93/mole/internal/config"
	"github.com/tw93/mole/internal/dirstats"
)

// resolveRoots turns user input into absolute directory paths. Roots that
// cannot be used are reported together; the rest are still returned.
func resolveRoots(roots []string) ([]string, error) {
	var (
		resolved []string
		errs     *multierror.Error
	)
	for _, root := range roots {
		expanded, err := config.ExpandPath(root)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("expand %q: %w", root, err))
			continue
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("resolve %q: %w", root, err))
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if !info.IsDir() {
			errs = multierror.Append(errs, fmt.Errorf("%s: not a directory", abs))
			continue
		}
		resolved = append(resolved, abs)
	}
	return resolved, errs.ErrorOrNil()
}

// printTotals traverses every root to completion and writes one row per root.
func printTotals(out io.Writer, engine *dirstats.Engine, roots []string) error {
	resolved, resolveErr := resolveRoots(roots)

	for _, root := range resolved {
		engine.RequestTraversal(root)
	}
	engine.WaitIdle()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ITEMS\tSIZE\tCOMPLETE\t")
	for _, root := range resolved {
		st := engine.Snapshot(root)
		fmt.Fprintf(tw, "%s\t%s\t%t\t  %s\n", formatCount(st.TotalCount), formatBytes(st.TotalSize), st.Complete, root)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return resolveErr
}
