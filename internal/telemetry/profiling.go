package telemetry

import (
	"context"
	"fmt"
	"maps"
	"os"
	"runtime"
	"slices"

	"github.com/grafana/pyroscope-go"
)

// ProfilingConfig selects the Pyroscope server and the profiles to push.
type ProfilingConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	ProfileTypes   []string
	Tags           map[string]string
}

var profileTypes = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

// ProfileTypeNames lists the accepted ProfileTypes values, sorted.
func ProfileTypeNames() []string {
	return slices.Sorted(maps.Keys(profileTypes))
}

// InitProfiling starts pushing profiles to Pyroscope.
func InitProfiling(cfg ProfilingConfig) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	types := make([]pyroscope.ProfileType, 0, len(cfg.ProfileTypes))
	for _, name := range cfg.ProfileTypes {
		pt, ok := profileTypes[name]
		if !ok {
			return nil, fmt.Errorf("unknown profile type %q", name)
		}
		types = append(types, pt)
	}
	// Mutex and block profiles are empty unless the runtime samples them.
	if slices.ContainsFunc(cfg.ProfileTypes, func(s string) bool { return s == "mutex_count" || s == "mutex_duration" }) {
		runtime.SetMutexProfileFraction(5)
	}
	if slices.ContainsFunc(cfg.ProfileTypes, func(s string) bool { return s == "block_count" || s == "block_duration" }) {
		runtime.SetBlockProfileRate(5)
	}

	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.Endpoint,
		Tags:            profileTags(cfg),
		ProfileTypes:    types,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	return func(context.Context) error { return p.Stop() }, nil
}

func profileTags(cfg ProfilingConfig) map[string]string {
	tags := map[string]string{"version": cfg.ServiceVersion}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}
	maps.Copy(tags, cfg.Tags)
	return tags
}
