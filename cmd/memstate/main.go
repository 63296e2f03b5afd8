// Command memstate walks virtual memory pages through reserve, commit, lock,
// unlock, decommit and release for a fixed set of page protections, writing
// what the OS reports after every step to MemState.log.
//
// Failures are printed to stdout; the exit code is always 0.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/wnxd/memstate/internal/lifecycle"
)

func main() {
	run(os.Stdout, lifecycle.Config{})
}

func run(stdout io.Writer, cfg lifecycle.Config) {
	defer func() {
		if ex := recover(); ex != nil {
			fmt.Fprintln(stdout, ex)
		}
	}()
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.InfoLevel)
	cfg.ErrOut = stdout
	cfg.Logger = log
	if _, err := lifecycle.Run(context.Background(), cfg); err != nil {
		fmt.Fprintln(stdout, err)
	}
}
