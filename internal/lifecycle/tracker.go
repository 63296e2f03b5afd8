package lifecycle

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/wnxd/memstate/memory"
	"github.com/wnxd/memstate/report"
)

type tracker struct {
	hs           *Handshake
	state        *traceState
	mgr          memory.Manager
	renderer     *report.Renderer
	out          io.Writer
	log          logrus.FieldLogger
	observations int
}

func (t *tracker) run(ctx context.Context) (err error) {
	defer recoverActor("tracker", &err)
	for {
		done, err := t.hs.TrackStep(ctx, t.observe)
		if err != nil {
			return err
		} else if done {
			return nil
		}
	}
}

func (t *tracker) observe() error {
	n := t.observations
	i, step := locate(n)
	if i >= len(t.state.traces) {
		return fmt.Errorf("%w: observation %d", ErrObservationOverrun, n)
	}
	tr := t.state.traces[i]
	snap, err := t.mgr.Query(tr.Start)
	if err != nil {
		return err
	}
	var lines []string
	if n == 0 {
		lines = append(lines, t.renderer.PageSize())
	}
	if step == StepReserve {
		lines = append(lines, t.renderer.Case(t.state.modes[i].Name)...)
	}
	lines = append(lines, step.String())
	lines = append(lines, t.renderer.Snapshot(&snap)...)
	for _, line := range lines {
		if _, err = fmt.Fprintln(t.out, line); err != nil {
			return err
		}
	}
	t.observations++
	t.log.WithFields(logrus.Fields{
		"mode":  t.state.modes[i].Name,
		"step":  step.String(),
		"state": snap.State.String(),
	}).Debug("observed")
	return nil
}
