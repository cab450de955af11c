package netconf

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/marmos91/smbmanager/internal/logger"
	"github.com/marmos91/smbmanager/internal/telemetry"
	"github.com/marmos91/smbmanager/pkg/smbconf"
)

// Config selects how `net` is invoked.
type Config struct {
	// NetBinary is the path or name of the Samba `net` tool.
	NetBinary string

	// UseSudo runs every command through SudoBinary.
	UseSudo    bool
	SudoBinary string

	// SetScript and DeleteScript, when set, receive the JSON payload of
	// a set or delete call on stdin instead of per-key `net conf` calls.
	SetScript    string
	DeleteScript string
}

func (c *Config) applyDefaults() {
	if c.NetBinary == "" {
		c.NetBinary = "net"
	}
	if c.SudoBinary == "" {
		c.SudoBinary = "sudo"
	}
}

// Metrics observes executed commands. A nil Metrics disables collection.
type Metrics interface {
	ObserveCommand(subcommand string, duration time.Duration, err error)
}

// SetPayload is the JSON document piped to SetScript.
type SetPayload struct {
	Section string            `json:"section"`
	Parms   map[string]string `json:"parms"`
}

// DeletePayload is the JSON document piped to DeleteScript.
type DeletePayload struct {
	Section string   `json:"section"`
	Parms   []string `json:"parms"`
}

// Client talks to the Samba registry configuration.
type Client struct {
	cfg     Config
	runner  Runner
	metrics Metrics
}

// New creates a Client. A nil runner uses ExecRunner without timeout.
func New(cfg Config, runner Runner, metrics Metrics) *Client {
	cfg.applyDefaults()
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Client{cfg: cfg, runner: runner, metrics: metrics}
}

// List returns the lines of `net conf list`.
func (c *Client) List(ctx context.Context) ([]string, error) {
	out, err := c.net(ctx, "list")
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n"), nil
}

// Snapshot reads and parses the current configuration.
func (c *Client) Snapshot(ctx context.Context) (*smbconf.Snapshot, error) {
	lines, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	snap := smbconf.Parse(lines)
	telemetry.SetAttributes(ctx, telemetry.Skipped(snap.Skipped()))
	return snap, nil
}

// AddShare creates a share section with its path.
func (c *Client) AddShare(ctx context.Context, name, path string) error {
	_, err := c.net(ctx, "addshare", name, path)
	return err
}

// DeleteShare removes a share section and all of its parameters.
func (c *Client) DeleteShare(ctx context.Context, name string) error {
	_, err := c.net(ctx, "delshare", name)
	return err
}

// DeleteKeys removes parameters from section, stopping at the first failure.
func (c *Client) DeleteKeys(ctx context.Context, section string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if c.cfg.DeleteScript != "" {
		return c.script(ctx, "delparm", c.cfg.DeleteScript, DeletePayload{Section: section, Parms: keys})
	}
	for _, key := range keys {
		if _, err := c.net(ctx, "delparm", section, smbconf.DisplayKey(key)); err != nil {
			return err
		}
	}
	return nil
}

// SetKeys writes parameters to section in key order, stopping at the first
// failure.
func (c *Client) SetKeys(ctx context.Context, section string, parms map[string]string) error {
	if len(parms) == 0 {
		return nil
	}
	if c.cfg.SetScript != "" {
		return c.script(ctx, "setparm", c.cfg.SetScript, SetPayload{Section: section, Parms: parms})
	}
	for _, key := range slices.Sorted(maps.Keys(parms)) {
		if _, err := c.net(ctx, "setparm", section, smbconf.DisplayKey(key), parms[key]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) net(ctx context.Context, subcommand string, args ...string) (string, error) {
	return c.exec(ctx, subcommand, nil, c.cfg.NetBinary, append([]string{"conf", subcommand}, args...)...)
}

func (c *Client) script(ctx context.Context, subcommand, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", subcommand, err)
	}
	_, err = c.exec(ctx, subcommand, body, path)
	return err
}

func (c *Client) exec(ctx context.Context, subcommand string, stdin []byte, name string, args ...string) (string, error) {
	if c.cfg.UseSudo {
		args = append([]string{"-n", name}, args...)
		name = c.cfg.SudoBinary
	}

	ctx, span := telemetry.StartNetConfSpan(ctx, subcommand, telemetry.Command(name, args...))
	defer span.End()

	start := time.Now()
	out, err := c.runner.Run(ctx, stdin, name, args...)
	if c.metrics != nil {
		c.metrics.ObserveCommand(subcommand, time.Since(start), err)
	}

	if err != nil {
		sinkErr := &SinkError{
			Command:  strings.TrimSpace(name + " " + strings.Join(args, " ")),
			Output:   string(out),
			ExitCode: exitCode(err),
			Err:      err,
		}
		span.SetAttributes(telemetry.ExitCode(sinkErr.ExitCode))
		telemetry.RecordError(ctx, sinkErr)
		logger.WarnCtx(ctx, "net conf command failed",
			logger.Command(name, args...), logger.ExitCode(sinkErr.ExitCode), logger.Output(strings.TrimSpace(sinkErr.Output)))
		return "", sinkErr
	}

	logger.DebugCtx(ctx, "net conf command ok",
		logger.Command(name, args...), logger.DurationMs(logger.Duration(start)))
	return string(out), nil
}
