package observability

import (
	"context"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/matchsync/internal/config"
)

// profileTypes leaves out mutex and block profiles; the syncer is network
// bound and its locks are short.
var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

func (t *Telemetry) startPyroscope(cfg config.Config) error {
	if !cfg.PyroscopeEnabled {
		t.logger.Debug("pyroscope disabled")
		return nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              profileTags(cfg, t.command),
		ProfileTypes:      profileTypes,
	})
	if err != nil {
		return err
	}
	t.onShutdown(func(context.Context) error { return profiler.Stop() })

	t.logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return nil
}

func profileTags(cfg config.Config, command string) map[string]string {
	tags := map[string]string{
		"env":     cfg.AppEnv,
		"version": cfg.ServiceVersion,
	}
	if command != "" {
		tags["command"] = command
	}
	return tags
}
