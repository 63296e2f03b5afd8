package lifecycle

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/wnxd/memstate/memory"
	"github.com/wnxd/memstate/report"
)

type allocator struct {
	hs       *Handshake
	state    *traceState
	mgr      memory.Manager
	pageSize uint64
	errOut   io.Writer
	log      logrus.FieldLogger
}

type region struct {
	reserved  bool
	committed bool
}

func (a *allocator) run(ctx context.Context) (err error) {
	defer recoverActor("allocator", &err)
	var (
		cur int
		rg  region
	)
	// also runs while panicking; a finished mode holds nothing
	defer func() { a.abandon(cur, &rg) }()
	total := a.state.steps()
	n := 0
	for i, mode := range a.state.modes {
		cur, rg = i, region{}
		for step := StepReserve; step < stepCount; step++ {
			n++
			err = a.hs.AllocStep(ctx, n == total, func() {
				a.apply(i, mode, step, &rg)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *allocator) apply(i int, mode memory.ProtectionMode, step Step, rg *region) {
	tr := &a.state.traces[i]
	log := a.log.WithFields(logrus.Fields{"mode": mode.Name, "step": step.String()})
	if a.skipped(step, rg) {
		log.Warn("step skipped, region was never set up")
		return
	}
	var err error
	switch step {
	case StepReserve:
		tr.Size = uint64(i+1) * a.pageSize
		tr.Start, err = a.mgr.Reserve(tr.Size)
		rg.reserved = err == nil
	case StepCommit:
		var start uintptr
		if start, err = a.mgr.Commit(tr.Start, tr.Size, mode.Protection); err == nil {
			tr.Start = start
			rg.committed = true
		}
	case StepLock:
		err = a.mgr.Lock(tr.Start, tr.Size)
	case StepUnlock:
		err = a.mgr.Unlock(tr.Start, tr.Size)
	case StepDecommit:
		if err = a.mgr.Decommit(tr.Start, tr.Size); err == nil {
			rg.committed = false
		}
	case StepRelease:
		err = a.mgr.Release(tr.Start)
		rg.reserved, rg.committed = false, false
	}
	log = log.WithFields(logrus.Fields{"addr": fmt.Sprintf("%016X", uint64(tr.Start)), "size": tr.Size})
	if err != nil {
		a.report(mode, step, err)
		log.WithError(err).Debug("step failed")
		return
	}
	log.Debug("step done")
}

func (a *allocator) skipped(step Step, rg *region) bool {
	switch step {
	case StepCommit, StepRelease:
		return !rg.reserved
	case StepLock, StepUnlock, StepDecommit:
		return !rg.committed
	}
	return false
}

func (a *allocator) report(mode memory.ProtectionMode, step Step, err error) {
	fmt.Fprintf(a.errOut, "%s %s: %s\n", step, mode.Name, report.DescribeError(err))
}

func (a *allocator) abandon(i int, rg *region) {
	if !rg.reserved {
		return
	}
	if err := a.mgr.Release(a.state.traces[i].Start); err != nil {
		a.log.WithError(err).Warn("release of abandoned region failed")
	}
	rg.reserved, rg.committed = false, false
}
