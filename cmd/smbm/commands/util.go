package commands

import (
	"github.com/marmos91/smbmanager/pkg/config"
)

// configSource names where the configuration came from, for the startup log.
func configSource(path string) string {
	switch {
	case path != "":
		return path
	case config.DefaultConfigExists():
		return config.GetDefaultConfigPath()
	}
	return "defaults and environment"
}
