package installer

// EventType identifies a lifecycle notification.
type EventType int

const (
	InstallationStarted EventType = iota
	InstallationFinished
	UninstallationStarted
	UninstallationFinished
	ProgressChanged
	Warning
)

func (t EventType) String() string {
	switch t {
	case InstallationStarted:
		return "InstallationStarted"
	case InstallationFinished:
		return "InstallationFinished"
	case UninstallationStarted:
		return "UninstallationStarted"
	case UninstallationFinished:
		return "UninstallationFinished"
	case ProgressChanged:
		return "ProgressChanged"
	case Warning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// Event is delivered to every subscribed Listener.
type Event struct {
	Type EventType

	// Progress is the percentage complete, 0-100.
	Progress int
	// Text is the progress line or the warning message.
	Text string
	// Status is set on the Finished events.
	Status Status
}

// Listener receives events on the goroutine running the installer. It must
// not block for long.
type Listener func(Event)

// Subscribe registers l for all future events.
func (in *Installer) Subscribe(l Listener) {
	if l == nil {
		return
	}
	in.mu.Lock()
	in.listeners = append(in.listeners, l)
	in.mu.Unlock()
}

func (in *Installer) emit(e Event) {
	in.mu.Lock()
	listeners := append([]Listener(nil), in.listeners...)
	in.mu.Unlock()
	for _, l := range listeners {
		l(e)
	}
}
