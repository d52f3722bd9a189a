package uuidfreeze

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/uuidfreeze/uuidfreeze/internal/registry"
)

// The package-level Control. Nothing here runs at import time: interception
// starts only when Install is called, and until then every package proxy
// delegates straight to the real constructors.
var (
	installMu sync.RWMutex
	installed *Control
)

// Install builds a Control and makes it the target of the package-level
// proxies. Installing twice without an Uninstall in between is an error.
func Install(opts ...Option) (*Control, error) {
	installMu.Lock()
	defer installMu.Unlock()
	if installed != nil {
		return nil, fmt.Errorf("uuidfreeze: already installed")
	}
	c, err := NewControl(opts...)
	if err != nil {
		return nil, err
	}
	installed = c
	return c, nil
}

// Active returns the installed Control, or nil.
func Active() *Control {
	installMu.RLock()
	defer installMu.RUnlock()
	return installed
}

// Uninstall tears down the installed Control and closes what it owns.
func Uninstall() error {
	installMu.Lock()
	defer installMu.Unlock()
	if installed == nil {
		return fmt.Errorf("uuidfreeze: not installed")
	}
	err := installed.Close()
	installed = nil
	return err
}

// intercept routes a package proxy call through the installed Control, or
// to the real constructor when nothing is installed. skip is relative to
// the proxy's caller.
func intercept(ch Channel) (uuid.UUID, error) {
	if c := Active(); c != nil {
		// +2 drops intercept and the package proxy.
		return c.reg.Intercept(ch, 2)
	}
	return registry.RealConstructor(ch)()
}

// UUID1 returns a version 1 UUID through the uuid1 channel.
func UUID1() (uuid.UUID, error) {
	return intercept(registry.ChannelUUID1)
}

// UUID3 returns the version 3 UUID of the namespace and name.
func UUID3(ns uuid.UUID, name string) (uuid.UUID, error) {
	if c := Active(); c != nil {
		return c.reg.InterceptNamespace(registry.ChannelUUID3, ns, name, 1)
	}
	return uuid.NewMD5(ns, []byte(name)), nil
}

// UUID4 returns a version 4 UUID through the uuid4 channel.
func UUID4() (uuid.UUID, error) {
	return intercept(registry.ChannelUUID4)
}

// UUID5 returns the version 5 UUID of the namespace and name.
func UUID5(ns uuid.UUID, name string) (uuid.UUID, error) {
	if c := Active(); c != nil {
		return c.reg.InterceptNamespace(registry.ChannelUUID5, ns, name, 1)
	}
	return uuid.NewSHA1(ns, []byte(name)), nil
}

// UUID6 returns a version 6 UUID through the uuid6 channel.
func UUID6() (uuid.UUID, error) {
	return intercept(registry.ChannelUUID6)
}

// UUID7 returns a version 7 UUID through the uuid7 channel.
func UUID7() (uuid.UUID, error) {
	return intercept(registry.ChannelUUID7)
}

// UUID8 returns a version 8 UUID through the uuid8 channel.
func UUID8() (uuid.UUID, error) {
	return intercept(registry.ChannelUUID8)
}

// Mock binds through the installed Control.
func Mock(ch Channel) (*Mocker, error) {
	c := Active()
	if c == nil {
		return nil, fmt.Errorf("uuidfreeze: not installed")
	}
	return c.Mock(ch)
}

// Freeze binds through the installed Control.
func Freeze(ch Channel, opts ...FreezeOption) (*Mocker, error) {
	c := Active()
	if c == nil {
		return nil, fmt.Errorf("uuidfreeze: not installed")
	}
	return c.Freeze(ch, opts...)
}
