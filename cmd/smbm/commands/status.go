package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/internal/cli/health"
	"github.com/marmos91/smbmanager/internal/cli/output"
	"github.com/marmos91/smbmanager/internal/cli/timeutil"
	"github.com/marmos91/smbmanager/internal/daemon"
	"github.com/marmos91/smbmanager/pkg/controlplane/api"
)

const statusProbeTimeout = 2 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the local server is up and ready",
	Long: `Report whether the local server is up and ready.

The PID file tells whether a process exists; /health and /health/ready tell
whether it answers and whether the database and 'net conf list' work.`,
	Example: "  smbm status\n  smbm status -o json --api-port 9000",
	Args:    cobra.NoArgs,
	RunE:    runStatus,
}

func init() {
	f := statusCmd.Flags()
	f.String("pid-file", "", "PID file (default: $XDG_STATE_HOME/smbm/smbm.pid)")
	f.Int("api-port", api.DefaultPort, "API port of the local server")
	f.StringP("output", "o", "table", "output format (table|json|yaml)")
}

// ServerStatus is what `smbm status` reports.
type ServerStatus struct {
	Running   bool                          `json:"running" yaml:"running"`
	PID       int                           `json:"pid,omitempty" yaml:"pid,omitempty"`
	Ready     bool                          `json:"ready" yaml:"ready"`
	StartedAt string                        `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime    string                        `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Checks    map[string]health.CheckResult `json:"checks,omitempty" yaml:"checks,omitempty"`
	Message   string                        `json:"message" yaml:"message"`
}

func (s ServerStatus) Headers() []string { return []string{"FIELD", "VALUE"} }

func (s ServerStatus) Rows() [][]string {
	state := "stopped"
	switch {
	case s.Running && s.Ready:
		state = "running"
	case s.Running:
		state = "running (not ready)"
	}
	rows := [][]string{{"Status", state}}
	if s.PID != 0 {
		rows = append(rows, []string{"PID", fmt.Sprint(s.PID)})
	}
	if s.StartedAt != "" {
		rows = append(rows, []string{"Started", timeutil.LocalRFC3339(s.StartedAt)})
	}
	if s.Uptime != "" {
		rows = append(rows, []string{"Uptime", s.Uptime})
	}
	names := make([]string, 0, len(s.Checks))
	for name := range s.Checks {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c := s.Checks[name]
		v := c.Status
		if c.Error != "" {
			v += ": " + c.Error
		}
		rows = append(rows, []string{"Check " + name, v})
	}
	return append(rows, []string{"", s.Message})
}

func runStatus(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}
	pidFile, _ := cmd.Flags().GetString("pid-file")
	if pidFile == "" {
		pidFile = daemon.DefaultPidFile()
	}
	port, _ := cmd.Flags().GetInt("api-port")

	st := probeStatus(pidFile, fmt.Sprintf("http://localhost:%d", port))
	return output.Write(os.Stdout, format, st, st)
}

// probeStatus combines the PID file with the health endpoints at base.
func probeStatus(pidFile, base string) ServerStatus {
	var st ServerStatus
	st.PID, st.Running = daemon.Running(pidFile)

	client := &http.Client{Timeout: statusProbeTimeout}
	var live health.Response
	if err := getJSON(client, base+"/health", &live); err != nil {
		st.Message = "server is not running"
		if st.Running {
			st.Message = "process exists but does not answer on " + base
		}
		return st
	}

	st.Running = true
	st.StartedAt = live.Data.StartedAt
	st.Uptime = timeutil.Duration(time.Duration(live.Data.UptimeSec) * time.Second)

	var ready health.Readiness
	if getJSON(client, base+"/health/ready", &ready) == nil {
		st.Ready = ready.Status == "healthy"
		st.Checks = ready.Data
	}
	st.Message = "server is running and ready"
	if !st.Ready {
		st.Message = "server is running but not ready"
	}
	return st
}

// getJSON decodes the body whatever the status; readiness answers 503 with
// the failing checks.
func getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return json.NewDecoder(resp.Body).Decode(v)
}
