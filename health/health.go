// Package health reports the status of the service's collaborators for the
// /status endpoint and boot logging.
package health

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/kirtilabs/kirti/cache"
	"github.com/kirtilabs/kirti/config"
)

// GetCacheStatus checks and returns the status of the cache connection.
func GetCacheStatus(c cache.Cache, cfg *config.RedisConfig) string {
	if cfg == nil || cfg.Addr == "" {
		return "not configured"
	}
	if c == nil {
		return "initialization failed"
	}
	if err := c.Ping(); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// GetCameraStatus checks that the configured video device exists.
func GetCameraStatus(device string) string {
	if device == "" {
		return "not configured"
	}
	if _, err := os.Stat(device); err != nil {
		return "missing: " + device
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return "ffmpeg not installed"
	}
	return "ok"
}

// GetStoreStatus reports whether the attendance store path is writable by
// probing its directory.
func GetStoreStatus(path string) string {
	if path == "" {
		return "not configured"
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
