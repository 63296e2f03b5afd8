package lifecycle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	goerrors "github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wnxd/memstate/internal/vmem"
	"github.com/wnxd/memstate/memory"
	"github.com/wnxd/memstate/report"
)

const DefaultLogPath = "MemState.log"

var (
	ErrEmptyPlan          = errors.New("no protection modes to exercise")
	ErrObservationOverrun = errors.New("observation without a matching step")
)

type ActorPanic struct {
	Actor string
	Value any
	Stack string
}

func (e *ActorPanic) Error() string {
	return fmt.Sprintf("[Panic] %s: %v", e.Actor, e.Value)
}

type Config struct {
	// LogPath is truncated at the start of the run.
	LogPath string
	Manager memory.Manager
	ErrOut  io.Writer
	Logger  logrus.FieldLogger

	modes []memory.ProtectionMode
}

func (c Config) withDefaults() (Config, error) {
	if c.LogPath == "" {
		c.LogPath = DefaultLogPath
	}
	if c.Manager == nil {
		mgr, err := vmem.New()
		if err != nil {
			return c, err
		}
		c.Manager = mgr
	}
	if c.ErrOut == nil {
		c.ErrOut = os.Stdout
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.modes == nil {
		c.modes = memory.DefaultModes
	}
	return c, nil
}

// Run returns the number of observations written.
func Run(ctx context.Context, cfg Config) (int, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return 0, err
	} else if len(cfg.modes) == 0 {
		return 0, ErrEmptyPlan
	}
	f, err := os.Create(cfg.LogPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	out := bufio.NewWriter(f)

	pageSize := cfg.Manager.PageSize()
	state := newTraceState(cfg.modes)
	hs := NewHandshake()
	alloc := &allocator{
		hs:       hs,
		state:    state,
		mgr:      cfg.Manager,
		pageSize: pageSize,
		errOut:   cfg.ErrOut,
		log:      cfg.Logger.WithField("actor", "allocator"),
	}
	track := &tracker{
		hs:       hs,
		state:    state,
		mgr:      cfg.Manager,
		renderer: report.NewRenderer(pageSize),
		out:      out,
		log:      cfg.Logger.WithField("actor", "tracker"),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return alloc.run(gctx) })
	g.Go(func() error { return track.run(gctx) })
	err = g.Wait()
	if ferr := out.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		cfg.Logger.WithError(err).Error("memory state trace aborted")
		return track.observations, err
	}
	cfg.Logger.WithFields(logrus.Fields{
		"observations": track.observations,
		"log":          cfg.LogPath,
	}).Info("memory state trace complete")
	return track.observations, nil
}

func recoverActor(actor string, err *error) {
	if ex := recover(); ex != nil {
		*err = &ActorPanic{
			Actor: actor,
			Value: ex,
			Stack: string(goerrors.Wrap(ex, 2).Stack()),
		}
	}
}
