package plan

import (
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the planned filesystem effects.
type Kind int

const (
	KindCreateDir Kind = iota
	KindMoveFile
	KindWriteMetadata
)

func (k Kind) String() string {
	switch k {
	case KindCreateDir:
		return "create_dir"
	case KindMoveFile:
		return "move_file"
	default:
		return "write_metadata"
	}
}

// Mode selects whether a file action relocates or duplicates the source.
type Mode int

const (
	ModeMove Mode = iota
	ModeCopy
)

func (m Mode) String() string {
	if m == ModeCopy {
		return "copy"
	}
	return "move"
}

// ContentFunc produces the text content of a metadata file at execution time.
// Serialization itself is a collaborator concern; the planner only carries the
// reference.
type ContentFunc func() (string, error)

// Action is a single planned filesystem effect.
type Action struct {
	Kind        Kind
	Source      string
	Destination string
	Mode        Mode
	// Conflict is set when the destination already exists on disk or is
	// targeted by an earlier action in the same plan.
	Conflict bool
	// OverwriteApproved records explicit approval to overwrite a conflicting
	// destination. Without it the executor refuses the action.
	OverwriteApproved bool
	// Content is set only for KindWriteMetadata.
	Content ContentFunc
}

// Summary aggregates plan counts for display and logging.
type Summary struct {
	CreateDirs     int
	Moves          int
	Copies         int
	MetadataWrites int
	Conflicts      int
}

// Plan is an ordered, conflict-annotated sequence of actions. It is created
// once per adoption, immutable after approval, and consumed read-only by the
// executor. Ordering is topologically valid: a destination's parent directory
// is always created by an earlier action or pre-exists.
type Plan struct {
	ID        string
	CreatedAt time.Time
	Actions   []Action
	Summary   Summary
}

func newPlan() *Plan {
	return &Plan{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

func (p *Plan) summarize() {
	var s Summary
	for _, action := range p.Actions {
		switch action.Kind {
		case KindCreateDir:
			s.CreateDirs++
		case KindMoveFile:
			if action.Mode == ModeCopy {
				s.Copies++
			} else {
				s.Moves++
			}
		case KindWriteMetadata:
			s.MetadataWrites++
		}
		if action.Conflict {
			s.Conflicts++
		}
	}
	p.Summary = s
}
