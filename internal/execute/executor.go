package execute

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"mediaorg/internal/config"
	"mediaorg/internal/fileutil"
	"mediaorg/internal/logging"
	"mediaorg/internal/plan"
	"mediaorg/internal/services"
)

// RunMode selects between previewing and mutating the filesystem.
type RunMode int

const (
	ModeDryRun RunMode = iota
	ModeLive
)

func (m RunMode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "dry-run"
}

// Policy selects the failure behavior of a live run.
type Policy int

const (
	// PolicyRollback walks already-applied actions in reverse with
	// best-effort compensations before surfacing the failure.
	PolicyRollback Policy = iota
	// PolicySkip records the failure per-action and keeps going.
	PolicySkip
)

func (p Policy) String() string {
	if p == PolicySkip {
		return "skip"
	}
	return "rollback"
}

// PolicyFromConfig maps the execution.on_failure config value to a Policy.
func PolicyFromConfig(cfg *config.Config) Policy {
	if cfg != nil && cfg.Execution.OnFailure == "skip" {
		return PolicySkip
	}
	return PolicyRollback
}

// State is an action's final disposition within one run.
type State int

const (
	StatePending State = iota
	StateApplied
	StateSkipped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateApplied:
		return "applied"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Outcome records what happened to one action.
type Outcome struct {
	Action      plan.Action
	State       State
	Detail      string
	Compensated bool
}

// Result summarizes one plan execution.
type Result struct {
	RunID      string
	Mode       RunMode
	Policy     Policy
	Outcomes   []Outcome
	RolledBack bool
	LogPath    string
	Err        error
}

// Executor applies an approved plan's actions strictly in order. Execution is
// sequential: later actions may depend on earlier ones, and rollback requires
// a well-defined already-applied prefix.
type Executor struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewExecutor builds an executor. The logger may be nil.
func NewExecutor(cfg *config.Config, logger *slog.Logger) *Executor {
	return &Executor{cfg: cfg, logger: logging.NewComponentLogger(logger, "execute")}
}

// Execute runs the plan under the given mode and policy. The plan is consumed
// read-only. The returned Result is non-nil whenever a log could be opened,
// even if execution failed; Result.Err carries the first failure.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan, mode RunMode, policy Policy) (*Result, error) {
	if p == nil || len(p.Actions) == 0 {
		return nil, services.Wrap(services.ErrValidation, "executing", "validate plan", "plan has no actions", nil)
	}

	runID := uuid.NewString()
	logPath := filepath.Join(e.cfg.Paths.ActionLogDir, fmt.Sprintf("%s-%s.jsonl", p.ID, runID))
	actionLog, err := OpenLog(logPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExecution, "executing", "open action log", "failed to open action log", err)
	}
	defer func() {
		if closeErr := actionLog.Close(); closeErr != nil {
			e.logger.Warn("action log close failed", logging.Error(closeErr))
		}
	}()

	result := &Result{RunID: runID, Mode: mode, Policy: policy, LogPath: logPath}

	if mode == ModeLive {
		lock := flock.New(filepath.Join(e.cfg.Paths.LibraryDir, ".mediaorg.lock"))
		locked, lockErr := lock.TryLock()
		if lockErr != nil {
			return nil, services.Wrap(services.ErrExecution, "executing", "lock library", "failed to acquire library lock", lockErr)
		}
		if !locked {
			return nil, services.Wrap(services.ErrConflict, "executing", "lock library", "another run holds the library lock", nil)
		}
		defer func() {
			if unlockErr := lock.Unlock(); unlockErr != nil {
				e.logger.Warn("library unlock failed", logging.Error(unlockErr))
			}
		}()

		if err := e.preflight(p); err != nil {
			result.Err = err
			return result, err
		}
	}

	e.logger.Info("plan execution starting",
		logging.String("plan_id", p.ID),
		logging.String("run_id", runID),
		logging.String("mode", mode.String()),
		logging.String("policy", policy.String()),
		logging.Int("actions", len(p.Actions)),
	)

	run := &runState{executor: e, plan: p, log: actionLog, runID: runID, result: result}
	run.execute(ctx, mode, policy)

	e.logger.Info("plan execution finished",
		logging.String("plan_id", p.ID),
		logging.String("run_id", runID),
		logging.Bool("rolled_back", result.RolledBack),
		logging.Bool("failed", result.Err != nil),
	)
	return result, result.Err
}

type runState struct {
	executor *Executor
	plan     *plan.Plan
	log      *Log
	runID    string
	result   *Result
	// createdDirs tracks directories this run created, newest last, so
	// rollback only removes what the run itself added.
	createdDirs map[string]struct{}
}

func (r *runState) execute(ctx context.Context, mode RunMode, policy Policy) {
	r.createdDirs = map[string]struct{}{}
	outcomes := make([]Outcome, len(r.plan.Actions))

	for idx, action := range r.plan.Actions {
		outcomes[idx] = Outcome{Action: action}

		if err := ctx.Err(); err != nil {
			outcomes[idx].State = StateFailed
			outcomes[idx].Detail = "aborted: " + err.Error()
			r.append(idx, action, TransitionFailed, outcomes[idx].Detail)
			r.fail(outcomes, idx, policy, services.Wrap(services.ErrExecution, "executing", "run actions", "execution aborted", err))
			return
		}

		if mode == ModeDryRun {
			outcomes[idx].State = StateSkipped
			outcomes[idx].Detail = "would have: " + plan.Describe(action)
			r.append(idx, action, TransitionSkipped, outcomes[idx].Detail)
			continue
		}

		if action.Conflict && !action.OverwriteApproved {
			outcomes[idx].State = StateFailed
			outcomes[idx].Detail = "destination exists and overwrite not approved"
			r.append(idx, action, TransitionFailed, outcomes[idx].Detail)
			r.fail(outcomes, idx, policy, services.Wrap(services.ErrConflict, "executing", "apply action", "refusing to overwrite "+action.Destination, nil))
			if policy == PolicySkip {
				continue
			}
			return
		}

		// The pending entry is durable before the effect is attempted.
		r.append(idx, action, TransitionPending, "")
		if err := r.apply(action); err != nil {
			outcomes[idx].State = StateFailed
			outcomes[idx].Detail = err.Error()
			r.append(idx, action, TransitionFailed, err.Error())
			r.fail(outcomes, idx, policy, services.Wrap(services.ErrExecution, "executing", "apply action", plan.Describe(action), err))
			if policy == PolicySkip {
				continue
			}
			return
		}
		outcomes[idx].State = StateApplied
		r.append(idx, action, TransitionApplied, "")
	}

	r.result.Outcomes = outcomes
}

// fail records the terminal error. Under the rollback policy it also walks
// the applied prefix in reverse compensating each action.
func (r *runState) fail(outcomes []Outcome, failedIdx int, policy Policy, err error) {
	if r.result.Err == nil {
		r.result.Err = err
	}
	r.result.Outcomes = outcomes
	if policy != PolicyRollback {
		return
	}
	for idx := failedIdx - 1; idx >= 0; idx-- {
		if outcomes[idx].State != StateApplied {
			continue
		}
		action := outcomes[idx].Action
		if compErr := r.compensate(action); compErr != nil {
			r.append(idx, action, TransitionCompensationFailed, compErr.Error())
			r.executor.logger.Warn("compensation failed",
				logging.String("action", plan.Describe(action)),
				logging.Error(compErr),
			)
			continue
		}
		outcomes[idx].Compensated = true
		r.append(idx, action, TransitionCompensated, "")
	}
	r.result.RolledBack = true
}

func (r *runState) apply(action plan.Action) error {
	switch action.Kind {
	case plan.KindCreateDir:
		if fileutil.Exists(action.Destination) {
			return nil
		}
		if err := os.MkdirAll(action.Destination, 0o755); err != nil {
			return err
		}
		r.createdDirs[action.Destination] = struct{}{}
		return nil
	case plan.KindMoveFile:
		if action.Mode == plan.ModeCopy {
			return fileutil.CopyFile(action.Source, action.Destination)
		}
		return fileutil.MoveFile(action.Source, action.Destination)
	case plan.KindWriteMetadata:
		if action.Content == nil {
			return fmt.Errorf("metadata action without content producer")
		}
		content, err := action.Content()
		if err != nil {
			return fmt.Errorf("produce metadata content: %w", err)
		}
		return os.WriteFile(action.Destination, []byte(content), 0o644)
	default:
		return fmt.Errorf("unknown action kind %d", action.Kind)
	}
}

// compensate best-effort undoes one applied action: moves go back, copies and
// metadata files are removed, and directories created by this run are removed
// when empty.
func (r *runState) compensate(action plan.Action) error {
	switch action.Kind {
	case plan.KindCreateDir:
		if _, created := r.createdDirs[action.Destination]; !created {
			return nil
		}
		return os.Remove(action.Destination)
	case plan.KindMoveFile:
		if action.Mode == plan.ModeCopy {
			return os.Remove(action.Destination)
		}
		return fileutil.MoveFile(action.Destination, action.Source)
	case plan.KindWriteMetadata:
		return os.Remove(action.Destination)
	default:
		return nil
	}
}

func (r *runState) append(idx int, action plan.Action, transition Transition, detail string) {
	entry := LogEntry{
		RunID:       r.runID,
		PlanID:      r.plan.ID,
		Index:       idx,
		Kind:        action.Kind.String(),
		Source:      action.Source,
		Destination: action.Destination,
		Transition:  transition,
		Detail:      detail,
	}
	if action.Kind == plan.KindMoveFile {
		entry.Mode = action.Mode.String()
	}
	if err := r.log.Append(entry); err != nil {
		r.executor.logger.Error("action log append failed", logging.Error(err))
	}
}
