// Package buildinfo carries the version stamped into both binaries and the
// `version` command they share.
//
// Release builds set the variables with
//
//	-ldflags "-X github.com/marmos91/smbmanager/internal/buildinfo.Version=v1.2.3 ..."
//
// Other builds fall back to the VCS data Go embeds.
package buildinfo

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/internal/cli/output"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info describes the running binary.
type Info struct {
	Binary    string `json:"binary" yaml:"binary"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build info of binary.
func Get(binary string) Info {
	info := Info{
		Binary:    binary,
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromVCS(&info, bi)
	}
	return info
}

func fillFromVCS(info *Info, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		}
	}
}

func (i Info) write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "%s %s\n", i.Binary, i.Version)
	_, _ = fmt.Fprintf(w, "  Commit:     %s\n", i.Commit)
	_, _ = fmt.Fprintf(w, "  Built:      %s\n", i.Date)
	_, _ = fmt.Fprintf(w, "  Go version: %s\n", i.GoVersion)
	_, _ = fmt.Fprintf(w, "  OS/Arch:    %s\n", i.Platform)
}

// Command is the `version` subcommand of binary.
func Command(binary string) *cobra.Command {
	var short bool
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := Get(binary)
			w := cmd.OutOrStdout()
			if short {
				_, err := fmt.Fprintln(w, info.Version)
				return err
			}
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == output.FormatTable {
				info.write(w)
				return nil
			}
			return output.Write(w, f, info, nil)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Show only the version number")
	cmd.Flags().StringVarP(&format, "output", "o", "", "Output format (table|json|yaml)")
	return cmd
}
