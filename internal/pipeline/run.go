package pipeline

// State is the lifecycle of a Run.
type State int

const (
	NotStarted State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Run is the record of one pipeline execution.
type Run struct {
	State State
	// Index is the position of the current, or failed, step.
	Index    int
	Executed []string
	Skipped  []string
	// Commits lists the checkpoint messages in the order they were recorded.
	Commits []string
	Err     error
}

func (r *Run) start() {
	r.State = Running
}

func (r *Run) fail(err error) error {
	r.State = Failed
	r.Err = err
	return err
}

func (r *Run) complete() {
	r.State = Completed
	r.Index = -1
}
