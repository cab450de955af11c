package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/marmos91/smbmanager/internal/cli/output"
	"github.com/marmos91/smbmanager/pkg/apiclient"
)

// PrintApplyResult reports an apply: the changes in table format, the
// result document otherwise.
func PrintApplyResult(w io.Writer, res *apiclient.ApplyResult) error {
	format, err := OutputFormat()
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.Write(w, format, res, nil)
	}

	output.PrintDelta(w, res.Delta.ToSet, res.Delta.ToDelete, ColorEnabled())
	for _, warning := range res.Warnings {
		output.Warning(w, warning, ColorEnabled())
	}
	if res.State == "done" {
		PrintSuccess(fmt.Sprintf("Section [%s] updated", res.Section))
	}
	return nil
}

// ApplyFailure rewrites an apply failure returned by the server into an
// error naming the failed step. The `net` output is kept verbatim. Other
// errors are wrapped with action.
func ApplyFailure(action string, err error) error {
	apiErr, ok := apiclient.AsAPIError(err)
	if !ok || !apiErr.IsApplyFailure() {
		return fmt.Errorf("%s: %w", action, err)
	}

	if apiErr.Result != nil {
		fmt.Fprintf(os.Stderr, "Attempted changes to [%s]:\n", apiErr.Result.Section)
		output.PrintDelta(os.Stderr, apiErr.Result.Delta.ToSet, apiErr.Result.Delta.ToDelete, false)
		if apiErr.Step == "set" && len(apiErr.Result.Delta.ToDelete) > 0 {
			fmt.Fprintln(os.Stderr, "Deletions completed before the failure and were not rolled back.")
		}
	}
	return fmt.Errorf("%s failed during %s step: %s", action, apiErr.Step, apiErr.Detail)
}
