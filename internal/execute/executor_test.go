package execute

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mediaorg/internal/logging"
	"mediaorg/internal/plan"
	"mediaorg/internal/services"
	"mediaorg/internal/testsupport"
)

func moveAction(source, dest string) plan.Action {
	return plan.Action{Kind: plan.KindMoveFile, Source: source, Destination: dest, Mode: plan.ModeMove}
}

func testPlan(actions ...plan.Action) *plan.Plan {
	p := &plan.Plan{ID: "plan-under-test", Actions: actions}
	return p
}

func TestExecuteDryRunTouchesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := filepath.Join(t.TempDir(), "Show.S01E01.mkv")
	testsupport.WriteFile(t, src, "video")
	dest := filepath.Join(cfg.Paths.LibraryDir, "tv", "Show", "Show.S01E01.mkv")

	p := testPlan(
		plan.Action{Kind: plan.KindCreateDir, Destination: filepath.Dir(dest)},
		moveAction(src, dest),
	)

	executor := NewExecutor(cfg, logging.NewNop())
	result, err := executor.Execute(context.Background(), p, ModeDryRun, PolicyRollback)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, outcome := range result.Outcomes {
		if outcome.State != StateSkipped {
			t.Fatalf("dry run produced state %v", outcome.State)
		}
	}
	if _, statErr := os.Stat(src); statErr != nil {
		t.Fatalf("dry run moved the source: %v", statErr)
	}
	if _, statErr := os.Stat(filepath.Dir(dest)); !os.IsNotExist(statErr) {
		t.Fatal("dry run created the destination directory")
	}

	entries, readErr := ReadLog(result.LogPath)
	if readErr != nil {
		t.Fatalf("ReadLog: %v", readErr)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	for _, entry := range entries {
		if entry.Transition != TransitionSkipped {
			t.Fatalf("transition = %s, want skipped", entry.Transition)
		}
	}
}

func TestExecuteLiveAppliesInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := filepath.Join(t.TempDir(), "Show.S01E01.mkv")
	testsupport.WriteFile(t, src, "video")

	seasonDir := filepath.Join(cfg.Paths.LibraryDir, "tv", "Show", "Season 01")
	dest := filepath.Join(seasonDir, "Show S01E01.mkv")
	nfoDest := filepath.Join(seasonDir, "Show S01E01.nfo")

	p := testPlan(
		plan.Action{Kind: plan.KindCreateDir, Destination: seasonDir},
		moveAction(src, dest),
		plan.Action{Kind: plan.KindWriteMetadata, Destination: nfoDest, Content: func() (string, error) {
			return "<episodedetails/>", nil
		}},
	)

	executor := NewExecutor(cfg, logging.NewNop())
	result, err := executor.Execute(context.Background(), p, ModeLive, PolicyRollback)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for idx, outcome := range result.Outcomes {
		if outcome.State != StateApplied {
			t.Fatalf("action %d state = %v, want applied", idx, outcome.State)
		}
	}

	if _, statErr := os.Stat(src); !os.IsNotExist(statErr) {
		t.Fatal("source still present after move")
	}
	content, readErr := os.ReadFile(dest)
	if readErr != nil || string(content) != "video" {
		t.Fatalf("destination content = %q, err %v", content, readErr)
	}
	nfoContent, readErr := os.ReadFile(nfoDest)
	if readErr != nil || string(nfoContent) != "<episodedetails/>" {
		t.Fatalf("metadata content = %q, err %v", nfoContent, readErr)
	}

	entries, readLogErr := ReadLog(result.LogPath)
	if readLogErr != nil {
		t.Fatalf("ReadLog: %v", readLogErr)
	}
	// Each action records pending then applied, in plan order.
	if len(entries) != 6 {
		t.Fatalf("got %d log entries, want 6", len(entries))
	}
	for i := 0; i < len(entries); i += 2 {
		if entries[i].Transition != TransitionPending || entries[i+1].Transition != TransitionApplied {
			t.Fatalf("entries %d/%d transitions = %s/%s", i, i+1, entries[i].Transition, entries[i+1].Transition)
		}
		if entries[i].Index != i/2 {
			t.Fatalf("entry %d index = %d, want %d", i, entries[i].Index, i/2)
		}
	}
}

func TestExecuteRollbackRestoresPriorState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "Show.S01E01.mkv")
	testsupport.WriteFile(t, src, "video")
	missing := filepath.Join(srcDir, "Show.S01E02.mkv")

	seasonDir := filepath.Join(cfg.Paths.LibraryDir, "tv", "Show", "Season 01")
	p := testPlan(
		plan.Action{Kind: plan.KindCreateDir, Destination: seasonDir},
		moveAction(src, filepath.Join(seasonDir, "Show S01E01.mkv")),
		moveAction(missing, filepath.Join(seasonDir, "Show S01E02.mkv")),
	)

	executor := NewExecutor(cfg, logging.NewNop())
	result, err := executor.Execute(context.Background(), p, ModeLive, PolicyRollback)
	if err == nil {
		t.Fatal("expected an execution error")
	}
	if !result.RolledBack {
		t.Fatal("result not marked rolled back")
	}

	if content, readErr := os.ReadFile(src); readErr != nil || string(content) != "video" {
		t.Fatalf("source not restored: %q, %v", content, readErr)
	}
	if _, statErr := os.Stat(seasonDir); !os.IsNotExist(statErr) {
		t.Fatal("created directory not removed during rollback")
	}
	if !result.Outcomes[1].Compensated {
		t.Fatalf("applied move not compensated: %+v", result.Outcomes[1])
	}
}

func TestExecuteSkipPolicyContinuesPastFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	srcDir := t.TempDir()
	missing := filepath.Join(srcDir, "Show.S01E01.mkv")
	src := filepath.Join(srcDir, "Show.S01E02.mkv")
	testsupport.WriteFile(t, src, "video")

	seasonDir := filepath.Join(cfg.Paths.LibraryDir, "tv", "Show", "Season 01")
	goodDest := filepath.Join(seasonDir, "Show S01E02.mkv")
	p := testPlan(
		plan.Action{Kind: plan.KindCreateDir, Destination: seasonDir},
		moveAction(missing, filepath.Join(seasonDir, "Show S01E01.mkv")),
		moveAction(src, goodDest),
	)

	executor := NewExecutor(cfg, logging.NewNop())
	result, err := executor.Execute(context.Background(), p, ModeLive, PolicySkip)
	if err == nil {
		t.Fatal("expected the failure to surface")
	}
	if result.RolledBack {
		t.Fatal("skip policy must not roll back")
	}
	if result.Outcomes[1].State != StateFailed {
		t.Fatalf("failing action state = %v, want failed", result.Outcomes[1].State)
	}
	if result.Outcomes[2].State != StateApplied {
		t.Fatalf("subsequent action state = %v, want applied", result.Outcomes[2].State)
	}
	if _, statErr := os.Stat(goodDest); statErr != nil {
		t.Fatalf("later action not applied: %v", statErr)
	}
}

func TestExecuteConflictRefusedWithoutApproval(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := filepath.Join(t.TempDir(), "Show.S01E01.mkv")
	testsupport.WriteFile(t, src, "new")
	dest := filepath.Join(cfg.Paths.LibraryDir, "Show S01E01.mkv")
	testsupport.WriteFile(t, dest, "old")

	action := moveAction(src, dest)
	action.Conflict = true

	executor := NewExecutor(cfg, logging.NewNop())
	result, err := executor.Execute(context.Background(), testPlan(action), ModeLive, PolicyRollback)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("err = %v, want a conflict error", err)
	}
	if result.Outcomes[0].State != StateFailed {
		t.Fatalf("state = %v, want failed", result.Outcomes[0].State)
	}
	if content, readErr := os.ReadFile(dest); readErr != nil || string(content) != "old" {
		t.Fatalf("destination modified: %q, %v", content, readErr)
	}
}

func TestExecuteConflictOverwriteApproved(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := filepath.Join(t.TempDir(), "Show.S01E01.mkv")
	testsupport.WriteFile(t, src, "new")
	dest := filepath.Join(cfg.Paths.LibraryDir, "Show S01E01.mkv")
	testsupport.WriteFile(t, dest, "old")

	action := moveAction(src, dest)
	action.Conflict = true
	action.OverwriteApproved = true

	executor := NewExecutor(cfg, logging.NewNop())
	result, err := executor.Execute(context.Background(), testPlan(action), ModeLive, PolicyRollback)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcomes[0].State != StateApplied {
		t.Fatalf("state = %v, want applied", result.Outcomes[0].State)
	}
	if content, readErr := os.ReadFile(dest); readErr != nil || string(content) != "new" {
		t.Fatalf("destination content = %q, %v", content, readErr)
	}
}

func TestExecuteAbortsOnCanceledContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := filepath.Join(t.TempDir(), "a.mkv")
	testsupport.WriteFile(t, src, "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := NewExecutor(cfg, logging.NewNop())
	result, err := executor.Execute(ctx, testPlan(moveAction(src, filepath.Join(cfg.Paths.LibraryDir, "a.mkv"))), ModeLive, PolicyRollback)
	if err == nil {
		t.Fatal("expected an abort error")
	}
	if result.Outcomes[0].State != StateFailed {
		t.Fatalf("state = %v, want failed", result.Outcomes[0].State)
	}
	if _, statErr := os.Stat(src); statErr != nil {
		t.Fatalf("aborted run touched the source: %v", statErr)
	}
}

func TestPolicyFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if PolicyFromConfig(cfg) != PolicyRollback {
		t.Fatal("default policy should roll back")
	}
	cfg.Execution.OnFailure = "skip"
	if PolicyFromConfig(cfg) != PolicySkip {
		t.Fatal("on_failure=skip not honored")
	}
}
