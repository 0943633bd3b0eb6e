package entity

// AssetDescriptor is an ordered list of script URLs. Later entries may depend on
// globals installed by earlier ones, so they must be loaded left to right.
type AssetDescriptor []string

// SignalKind identifies the kind of readiness notification a loader emits.
type SignalKind int

const (
	// SignalLoad is the standard load-completion event.
	SignalLoad SignalKind = iota
	// SignalReadyState is a legacy ready-state transition; see LoadSignal.State.
	SignalReadyState
	// SignalError reports that the script could not be loaded.
	SignalError
)

// LoadSignal is one notification about a script being loaded.
type LoadSignal struct {
	Kind  SignalKind
	State string // set for SignalReadyState, e.g. "loading", "loaded", "complete"
	Err   error  // set for SignalError
}

// Completes reports whether the signal marks the script as ready.
func (s LoadSignal) Completes() bool {
	switch s.Kind {
	case SignalLoad:
		return true
	case SignalReadyState:
		return s.State == "loaded" || s.State == "complete"
	}
	return false
}
