package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/internal/cli/output"
	"github.com/marmos91/smbmanager/pkg/reconcile"
	"github.com/marmos91/smbmanager/pkg/smbconf"
	"github.com/marmos91/smbmanager/pkg/smbconf/binding"
)

var (
	parseOutput  string
	parseSection string
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a 'net conf list' dump offline",
	Long: `Parse the output of 'net conf list' and print it normalized.

Reads from the given file, or stdin when the file is omitted or '-'.
No Samba installation is needed. With --section, the section is printed as
the edit form the API would hand out: bound fields and advanced text.

Examples:
  # Normalize a dump
  net conf list | smbm parse

  # Show the form of one share
  smbm parse dump.txt --section media -o yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "text", "Output format (text|json|yaml)")
	parseCmd.Flags().StringVar(&parseSection, "section", "", "Print the edit form of one section")
}

// ParsedSection is one section of a parsed dump.
type ParsedSection struct {
	Name   string            `json:"name" yaml:"name"`
	Scope  binding.Scope     `json:"scope" yaml:"scope"`
	Params map[string]string `json:"params" yaml:"params"`
	Form   *reconcile.Form   `json:"form,omitempty" yaml:"form,omitempty"`
}

// ParsedConfig is the structured form of a parsed dump.
type ParsedConfig struct {
	Global  map[string]string `json:"global" yaml:"global"`
	Shares  []ParsedSection   `json:"shares" yaml:"shares"`
	Skipped int               `json:"skipped" yaml:"skipped"`
}

func runParse(cmd *cobra.Command, args []string) error {
	in := io.Reader(os.Stdin)
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open dump: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	snap, err := smbconf.ParseReader(in)
	if err != nil {
		return fmt.Errorf("failed to read dump: %w", err)
	}
	if snap.Skipped() > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d unrecognized line(s) ignored\n", snap.Skipped())
	}

	if parseSection != "" {
		sec, err := sectionForm(snap, parseSection)
		if err != nil {
			return err
		}
		return printParsed(cmd.OutOrStdout(), sec, func(w io.Writer) {
			_, _ = fmt.Fprintf(w, "[%s]\n", sec.Name)
			for _, b := range binding.For(sec.Scope) {
				_, _ = fmt.Fprintf(w, "\t%-16s %s\n", b.Key+":", sec.Form.Bound[b.Key])
			}
			if sec.Form.Advanced != "" {
				_, _ = fmt.Fprintf(w, "\nadvanced:\n%s", sec.Form.Advanced)
			}
		})
	}

	parsed := ParsedConfig{Global: snap.Global(), Skipped: snap.Skipped()}
	for _, name := range snap.Sections() {
		params, _ := snap.Section(name)
		parsed.Shares = append(parsed.Shares, ParsedSection{Name: name, Scope: binding.ScopeShare, Params: params})
	}
	return printParsed(cmd.OutOrStdout(), parsed, func(w io.Writer) {
		_, _ = io.WriteString(w, smbconf.Render(snap))
	})
}

// sectionForm builds the edit form of one section of snap.
func sectionForm(snap *smbconf.Snapshot, name string) (ParsedSection, error) {
	params, ok := snap.Section(name)
	if !ok {
		return ParsedSection{}, fmt.Errorf("section %q not found in dump", name)
	}
	scope := binding.ScopeShare
	if smbconf.IsGlobal(name) {
		scope, name = binding.ScopeGlobal, smbconf.GlobalSection
	}
	form := reconcile.Open(scope, name, params, reconcile.AdvancedResend).Form()
	return ParsedSection{Name: name, Scope: scope, Params: params, Form: &form}, nil
}

func printParsed(w io.Writer, data any, text func(io.Writer)) error {
	switch parseOutput {
	case "json":
		return output.PrintJSON(w, data)
	case "yaml", "yml":
		return output.PrintYAML(w, data)
	case "text", "":
		text(w)
		return nil
	}
	return fmt.Errorf("invalid output format: %q (valid: text, json, yaml)", parseOutput)
}
