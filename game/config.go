package game

// Options configures a Simulator.
type Options struct {
	// Observers are subscribed in order right after construction.
	Observers []Observer
	// Telemetry enables windowed stats, bookmarks and perf sampling.
	// Nil disables them.
	Telemetry *Telemetry
}
