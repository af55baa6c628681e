package plugin

import (
	"os"
	"strconv"
	"strings"
)

const defaultPluginDir = "/usr/lib64/spa-0.2"
const defaultSupportLib = "support/libspa-support.so"

// Env holds the handful of environment-derived settings that control
// plugin discovery and loading, read once at Loader construction time.
type Env struct {
	PluginDirs  []string
	SupportLib  string
	DoDlclose   bool
	NoColor     bool
	NoConfig    bool
}

// EnvFromProcess reads SPA_PLUGIN_DIR, SPA_SUPPORT_LIB, PIPEWIRE_DLCLOSE,
// NO_COLOR, and PIPEWIRE_NO_CONFIG from the process environment,
// falling back to the same defaults as the companion native loader.
func EnvFromProcess() Env {
	pluginDir := os.Getenv("SPA_PLUGIN_DIR")
	if pluginDir == "" {
		pluginDir = defaultPluginDir
	}
	supportLib := os.Getenv("SPA_SUPPORT_LIB")
	if supportLib == "" {
		supportLib = defaultSupportLib
	}
	return Env{
		PluginDirs: strings.Split(pluginDir, ":"),
		SupportLib: supportLib,
		DoDlclose:  readEnvBool("PIPEWIRE_DLCLOSE"),
		NoColor:    readEnvBool("NO_COLOR"),
		NoConfig:   readEnvBool("PIPEWIRE_NO_CONFIG"),
	}
}

func readEnvBool(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return v != ""
	}
	return b
}
