package usecase

// Phase is the progress of a view's initial fetch.
type Phase int

const (
	// PhaseLoading is the zero value: the fetch has not completed.
	PhaseLoading Phase = iota
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "loading"
	}
}

func (p Phase) Loading() bool { return p == PhaseLoading }
func (p Phase) Loaded() bool  { return p == PhaseLoaded }
func (p Phase) Failed() bool  { return p == PhaseFailed }
