package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/internal/daemon"
	"github.com/marmos91/smbmanager/pkg/config"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print or follow the server log",
	Long: `Print the end of the server log and optionally follow it.

The file is logging.output from the configuration. A server that logs to
stdout or stderr was started in the background, so the daemon log under
$XDG_STATE_HOME/smbm is read instead.`,
	Example: `  smbm logs
  smbm logs -f
  smbm logs -n 20 --since 2026-01-15T10:00:00Z`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	f := logsCmd.Flags()
	f.BoolP("follow", "f", false, "keep printing new lines")
	f.IntP("lines", "n", 100, "lines to print before following")
	f.String("since", "", "skip lines older than this RFC3339 time")
}

func runLogs(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	path := cfg.Logging.Output
	if path == "stdout" || path == "stderr" {
		path = daemon.DefaultLogFile()
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no log file at %s; the server has not written one yet", path)
	}

	var since time.Time
	if s, _ := cmd.Flags().GetString("since"); s != "" {
		if since, err = time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("--since: %w", err)
		}
	}
	n, _ := cmd.Flags().GetInt("lines")

	out := cmd.OutOrStdout()
	if err := showLogs(out, path, n, since); err != nil {
		return err
	}
	if follow, _ := cmd.Flags().GetBool("follow"); !follow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "following %s, Ctrl+C to stop\n", path)
	return followLogs(ctx, out, path)
}

// showLogs prints the last n lines of path that are not older than since.
// Lines without a recognizable time are always kept.
func showLogs(w io.Writer, path string, n int, since time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, 0, n)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if ts := extractTimestamp(line); !since.IsZero() && !ts.IsZero() && ts.Before(since) {
			continue
		}
		if n <= 0 {
			continue
		}
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, line := range ring {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// tail reads what is appended to a file and can switch to a new file of
// the same name after rotation.
type tail struct {
	path string
	f    *os.File
	r    *bufio.Reader
}

func openTail(path string, fromEnd bool) (*tail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if fromEnd {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return &tail{path: path, f: f, r: bufio.NewReader(f)}, nil
}

// drain copies every complete or partial line available now.
func (t *tail) drain(w io.Writer) {
	for {
		line, err := t.r.ReadString('\n')
		if line != "" {
			_, _ = io.WriteString(w, line)
		}
		if err != nil {
			return
		}
	}
}

// reopen finishes the old file and continues at the start of the new one.
func (t *tail) reopen(w io.Writer) {
	t.drain(w)
	next, err := openTail(t.path, false)
	if err != nil {
		return
	}
	_ = t.f.Close()
	*t = *next
	t.drain(w)
}

func (t *tail) Close() error { return t.f.Close() }

// followLogs copies lines appended to path until ctx is done. The parent
// directory is watched so rotation by rename and create is noticed.
func followLogs(ctx context.Context, w io.Writer, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	t, err := openTail(path, true)
	if err != nil {
		return err
	}
	defer func() { _ = t.Close() }()

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Create) {
				t.reopen(w)
			} else if ev.Has(fsnotify.Write) {
				t.drain(w)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher: %w", err)
		}
	}
}

// textStampLayout is the bracketed local time the text log handler writes.
const textStampLayout = "[2006-01-02 15:04:05]"

// extractTimestamp finds the time of a log line: the text handler's
// bracketed stamp, a leading RFC3339 stamp, a JSON "time" field or a
// "time=" attribute. It returns the zero time when there is none.
func extractTimestamp(line string) time.Time {
	if len(line) >= len(textStampLayout) && line[0] == '[' {
		if t, err := time.ParseInLocation(textStampLayout, line[:len(textStampLayout)], time.Local); err == nil {
			return t
		}
	}
	if first, _, _ := strings.Cut(line, " "); first != "" {
		if t, err := time.Parse(time.RFC3339Nano, first); err == nil {
			return t
		}
	}
	for _, key := range [...]string{`"time":"`, "time="} {
		_, rest, ok := strings.Cut(line, key)
		if !ok {
			continue
		}
		if end := strings.IndexAny(rest, "\" "); end >= 0 {
			rest = rest[:end]
		}
		if t, err := time.Parse(time.RFC3339Nano, rest); err == nil {
			return t
		}
	}
	return time.Time{}
}
