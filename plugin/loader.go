// Package plugin loads native SPA-style plugin libraries: it dlopens
// a shared object with purego, walks its spa_handle_factory_enum entry
// point to discover the factories it exports, and wraps the handles
// those factories produce so Go code can call into them without cgo.
package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

const entrypointSymbol = "spa_handle_factory_enum"

// Plugin is one loaded shared object, with its exported factories
// enumerated once at load time.
type Plugin struct {
	path      string
	lib       uintptr
	factories []*Factory
}

// FindFactory returns the named factory, or nil if this plugin doesn't
// export one by that name.
func (p *Plugin) FindFactory(name string) *Factory {
	for _, f := range p.factories {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// Factories returns every factory this plugin exports.
func (p *Plugin) Factories() []*Factory { return p.factories }

func loadPlugin(path string) (*Plugin, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("plugin: dlopen %s: %w", path, err)
	}

	var entrypoint func(*uintptr, *uint32) int32
	purego.RegisterLibFunc(&entrypoint, lib, entrypointSymbol)

	var factories []*Factory
	var cursor uintptr
	var index uint32
	for {
		ret := entrypoint(&cursor, &index)
		switch ret {
		case 1:
			factories = append(factories, &Factory{raw: (*cHandleFactory)(unsafe.Pointer(cursor))})
		case 0:
			return &Plugin{path: path, lib: lib, factories: factories}, nil
		default:
			return nil, fmt.Errorf("plugin: %s: %s returned %d", path, entrypointSymbol, ret)
		}
	}
}

// Loader is the bootstrap that finds, loads, and caches native
// plugins by name, mirroring the companion native loader's plugin-dir
// search and per-library/per-factory caching.
type Loader struct {
	env Env

	mu        sync.Mutex
	plugins   map[string]*Plugin
	factories map[string]*Factory
}

// NewLoader builds a Loader using env for plugin-directory and
// support-library configuration.
func NewLoader(env Env) *Loader {
	return &Loader{
		env:       env,
		plugins:   make(map[string]*Plugin),
		factories: make(map[string]*Factory),
	}
}

// LoadFactory resolves factoryName within lib (a filename relative to
// the loader's plugin directories; empty selects the configured
// support library), loading and caching the underlying plugin the
// first time it's needed.
func (l *Loader) LoadFactory(lib, factoryName string) (*Factory, error) {
	if lib == "" {
		lib = l.env.SupportLib
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var libPath string
	var plug *Plugin
	for _, dir := range l.env.PluginDirs {
		candidate := filepath.Join(dir, lib)
		if cached, ok := l.plugins[candidate]; ok {
			plug = cached
			libPath = candidate
			break
		}
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		loaded, err := loadPlugin(candidate)
		if err != nil {
			continue
		}
		l.plugins[candidate] = loaded
		plug = loaded
		libPath = candidate
		break
	}
	if plug == nil {
		return nil, fmt.Errorf("plugin: not found: %s", lib)
	}

	cacheKey := libPath + "/" + factoryName
	if f, ok := l.factories[cacheKey]; ok {
		return f, nil
	}
	f := plug.FindFactory(factoryName)
	if f == nil {
		return nil, fmt.Errorf("plugin: factory not found: %s", factoryName)
	}
	l.factories[cacheKey] = f
	return f, nil
}
