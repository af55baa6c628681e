package plugin

import (
	"go.uber.org/zap"

	"github.com/aclements/go-spa/support"
	"github.com/aclements/go-spa/support/cpubridge"
	"github.com/aclements/go-spa/support/logbridge"
	"github.com/aclements/go-spa/support/loopbridge"
	"github.com/aclements/go-spa/support/sysbridge"
	"github.com/aclements/go-spa/support/threadbridge"
)

// NewDefaultSupport builds a registry pre-populated with the built-in
// (non-plugin) Log/System/CPU/Loop/LoopControl/LoopUtils/ThreadUtils
// façades. It lives here rather than on the support package itself
// because wiring concrete façades in requires importing every bridge
// subpackage, and each of those imports support for the Kind/Interface
// contracts — package support must stay upstream of its bridges, so
// the bootstrap that depends on all of them sits one level up, exactly
// as the native counterpart keeps this wiring in a separate crate from
// the registry type itself.
func NewDefaultSupport(logger *zap.Logger) (*support.Support, *loopbridge.Bundle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sys := sysbridge.New()
	bundle, err := loopbridge.New(sys)
	if err != nil {
		return nil, nil, err
	}

	s := support.New()
	s.AddInterface(support.NameLog, logbridge.New(logger, logbridge.LevelInfo))
	s.AddInterface(support.NameSystem, sys)
	s.AddInterface(support.NameCPU, cpubridge.New())
	s.AddInterface(support.NameLoop, bundle.Loop)
	s.AddInterface(support.NameLoopControl, bundle.Control)
	s.AddInterface(support.NameLoopUtils, bundle.Utils)
	s.AddInterface(support.NameThreadUtils, threadbridge.New())

	return s, bundle, nil
}
