package sim

// A Connection is responsible for delivering messages to its destination.
type Connection interface {
	Named
	Hookable

	PlugIn(port Port)
	Unplug(port Port)

	// NotifyAvailable is called by a port whose full incoming buffer frees a
	// slot.
	NotifyAvailable(port Port)

	// NotifySend is called by a port whose outgoing buffer turns non-empty.
	NotifySend()
}

// HookPosConnDeliver marks a connection delivered a message.
var HookPosConnDeliver = &HookPos{Name: "Conn Deliver"}
