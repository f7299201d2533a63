package sim

// TimeTeller reports the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler accepts events that happen at or after the current time.
type EventScheduler interface {
	Schedule(e Event)
}

// SimulationEndHandler runs once the engine has finished, for example to
// flush recorded data.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// Engine drives a discrete event simulation. Run returns when there are no
// more events or when an event handler fails; the first handler error is
// returned.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	Run() error

	// Pause blocks the engine before its next event. Continue releases it.
	Pause()
	Continue()

	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished calls every registered SimulationEndHandler.
	Finished()
}
