package execute

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"mediaorg/internal/plan"
	"mediaorg/internal/services"
)

// preflight verifies the library filesystem has room for every copy-mode
// action before any mutation starts. Move-mode renames stay on-device in the
// common case and are not counted.
func (e *Executor) preflight(p *plan.Plan) error {
	var required uint64
	for _, action := range p.Actions {
		if action.Kind != plan.KindMoveFile || action.Mode != plan.ModeCopy {
			continue
		}
		info, err := os.Stat(action.Source)
		if err != nil {
			return services.Wrap(services.ErrValidation, "executing", "preflight", "stat source "+action.Source, err)
		}
		required += uint64(info.Size())
	}
	if required == 0 {
		return nil
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(e.cfg.Paths.LibraryDir, &stat); err != nil {
		return services.Wrap(services.ErrExecution, "executing", "preflight", "statfs library dir", err)
	}
	available := stat.Bavail * uint64(stat.Bsize)
	if available < required {
		return services.Wrap(
			services.ErrValidation,
			"executing",
			"preflight",
			fmt.Sprintf("library filesystem has %d bytes free, plan needs %d", available, required),
			nil,
		)
	}
	return nil
}
