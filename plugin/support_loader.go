package plugin

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aclements/go-spa/dict"
	"github.com/aclements/go-spa/support"
	"github.com/aclements/go-spa/support/loopbridge"
)

// SupportLoader bundles a Loader with the default built-in Support
// registry those loaded plugins are initialized against, mirroring the
// native bootstrap's single entry point for "find this factory,
// initialize it against our façades."
type SupportLoader struct {
	*Loader
	Support *support.Support
	Bundle  *loopbridge.Bundle
}

// NewSupportLoader wires a Loader using env together with a default
// Support registry logging through logger.
func NewSupportLoader(env Env, logger *zap.Logger) (*SupportLoader, error) {
	s, bundle, err := NewDefaultSupport(logger)
	if err != nil {
		return nil, err
	}
	return &SupportLoader{
		Loader:  NewLoader(env),
		Support: s,
		Bundle:  bundle,
	}, nil
}

// LoadSPAHandle finds factoryName within lib (empty selects the
// configured support library), initializes it against this loader's
// Support registry, and returns the resulting Handle.
func (sl *SupportLoader) LoadSPAHandle(lib, factoryName string, info *dict.Dict) (*Handle, error) {
	factory, err := sl.LoadFactory(lib, factoryName)
	if err != nil {
		return nil, fmt.Errorf("plugin: %w", err)
	}
	supportPtr, supportLen := sl.Support.CSupport()
	return factory.Init(info, supportPtr, supportLen)
}
