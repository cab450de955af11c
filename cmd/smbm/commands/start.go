package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/internal/buildinfo"
	"github.com/marmos91/smbmanager/internal/daemon"
	"github.com/marmos91/smbmanager/internal/logger"
	"github.com/marmos91/smbmanager/internal/telemetry"
	"github.com/marmos91/smbmanager/pkg/config"
	"github.com/marmos91/smbmanager/pkg/controlplane"
	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
	"github.com/marmos91/smbmanager/pkg/metrics"
	metricsprom "github.com/marmos91/smbmanager/pkg/metrics/prometheus"
	"github.com/marmos91/smbmanager/pkg/netconf"
	"github.com/marmos91/smbmanager/pkg/reconcile"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the smbm server",
	Long: `Start the smbm server with the specified configuration.

By default, the server runs in the background (daemon mode). Use --foreground
when running under systemd or another process supervisor.

Examples:
  # Start in background (default)
  smbm start

  # Start in foreground
  smbm start --foreground

  # Start with custom config file
  smbm start --config /etc/smbm/config.yaml

  # Run 'net' through sudo
  SMBM_SAMBA_USE_SUDO=true smbm start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/smbm/smbm.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/smbm/smbm.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if pidFile == "" {
		pidFile = daemon.DefaultPidFile()
	}
	if pid, running := daemon.Running(pidFile); running {
		return fmt.Errorf("smbm is already running (PID %d)\nUse 'smbm stop' to stop it", pid)
	}
	if !foreground {
		return startBackground()
	}

	cfg, err := config.MustLoad(cfgFile)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	version := buildinfo.Get("smbm").Version

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "smbm",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "smbm",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(context.Background()); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", configSource(cfgFile))
	if cfg.Telemetry.Enabled {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if cfg.Telemetry.Profiling.Enabled {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	if err := config.CheckBinaries(cfg); err != nil {
		logger.Warn("Samba tooling not found; reads and applies will fail until it is installed", logger.Err(err))
	}

	// Registry must exist before any collector is created.
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = metrics.NewServer(metrics.ServerConfig{Port: cfg.Metrics.Port})
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	sink := netconf.New(netconf.Config{
		NetBinary:    cfg.Samba.NetBinary,
		UseSudo:      cfg.Samba.UseSudo,
		SudoBinary:   cfg.Samba.SudoBinary,
		SetScript:    cfg.Samba.SetScript,
		DeleteScript: cfg.Samba.DeleteScript,
	}, netconf.ExecRunner{
		Timeout:   cfg.Samba.CommandTimeout,
		MaxOutput: int64(cfg.Samba.MaxOutput),
	}, metricsprom.NewNetConfMetrics())

	apiCfg := cfg.ControlPlane
	cp, err := controlplane.New(ctx, &controlplane.Options{
		Database: &cfg.Database,
		API:      &apiCfg,
		Backend:  sink,
		Runtime: []runtime.Option{
			runtime.WithAdvancedPolicy(reconcile.ParseAdvancedPolicy(cfg.Samba.AdvancedPolicy)),
			runtime.WithSessionTTL(cfg.Samba.SessionTTL),
			runtime.WithShutdownTimeout(cfg.ShutdownTimeout),
			runtime.WithMetrics(metricsprom.NewRuntimeMetrics()),
			runtime.WithApplyMetrics(metricsprom.NewReconcileMetrics()),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize control plane: %w", err)
	}
	defer func() { _ = cp.Close() }()

	if metricsServer != nil {
		cp.Runtime().AddAuxiliaryServer(metricsServer)
	}

	adminPassword, err := cp.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}
	if adminPassword != "" {
		logger.Info("Admin user created", "username", cfg.Admin.Username)
		fmt.Printf("\n*** IMPORTANT: Admin user '%s' created with password: %s ***\n", cfg.Admin.Username, adminPassword)
		fmt.Println("You will be asked to change it on first login. It will not be shown again.")
		fmt.Println()
	}

	removePID, err := daemon.WritePID(pidFile)
	if err != nil {
		return err
	}
	defer removePID()

	logger.Info("Server is running. Press Ctrl+C to stop.")

	err = cp.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", logger.Err(err))
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// startBackground re-executes `smbm start --foreground` detached from the
// terminal.
func startBackground() error {
	if logFile == "" {
		logFile = daemon.DefaultLogFile()
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	args := []string{"start", "--foreground", "--pid-file", pidFile}
	if cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}
	pid, err := daemon.Spawn(args, logFile)
	if err != nil {
		return err
	}

	fmt.Printf("smbm started in background (PID %d)\n", pid)
	fmt.Printf("  PID file: %s\n", pidFile)
	fmt.Printf("  Log file: %s\n", logFile)
	fmt.Println("\nUse 'smbm status' to check it and 'smbm stop' to stop it")
	return nil
}
