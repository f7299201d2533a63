package sim

import (
	"sync"
)

// A Component is an element that is being simulated.
type Component interface {
	Named
	Handler
	Hookable
	PortOwner

	NotifyRecv(port Port)
	NotifyPortFree(port Port)
}

// ComponentBase provides the name, hooks, lock and ports of a component.
type ComponentBase struct {
	*HookableBase
	*PortOwnerBase
	sync.Mutex

	name string
}

// NewComponentBase creates a new ComponentBase
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	return &ComponentBase{
		HookableBase:  NewHookableBase(),
		PortOwnerBase: NewPortOwnerBase(),
		name:          name,
	}
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}
