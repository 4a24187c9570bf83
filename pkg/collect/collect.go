// Package collect defines the boundary to collection backends: the Collecter
// contract, and the runner that drains backends into a data file. The
// backends themselves — the wrappers invoking perf, eBPF tooling and friends
// — live outside this repository; this package only guarantees that whatever
// they emit reaches the file as well-formed sections in a deterministic
// order.
package collect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ensoft/marple/pkg/datafile"
	"github.com/ensoft/marple/pkg/record"
)

// Collecter is one collection backend. Collect calls emit once per record,
// in emission order, and returns when the run is over; returning is the
// explicit completion signal that lets the codec close the backend's section
// cleanly, also on early termination. Records emitted before a failure are
// still written out.
type Collecter interface {
	// Interface names the backend, as recorded in its section header.
	Interface() string

	// Datatype declares the record variant the backend emits.
	Datatype() record.Datatype

	Collect(ctx context.Context, emit func(record.Record) error) error
}

// Runner drives a set of collecters for one collection run and writes one
// section per collecter, in registration order, to a single writer. Backends
// run concurrently; the file is written by this single runner only.
type Runner struct {
	w   *datafile.Writer
	log *zap.Logger

	// Now stubs time for tests; defaults to time.Now.
	now func() time.Time
}

func NewRunner(w *datafile.Writer, log *zap.Logger) *Runner {
	return &Runner{w: w, log: log, now: time.Now}
}

// Run collects from every backend concurrently, then flushes the emitted
// records as one section per backend in registration order. A failing
// backend does not stop the others; its partial section is still written and
// its error reported alongside the rest.
func (r *Runner) Run(ctx context.Context, collecters ...Collecter) error {
	start := r.now().Unix()

	buffers := make([][]record.Record, len(collecters))
	failures := make([]error, len(collecters))

	g, ctx := errgroup.WithContext(ctx)
	for i, c := range collecters {
		g.Go(func() error {
			r.log.Info("collecting",
				zap.String("interface", c.Interface()),
				zap.String("datatype", string(c.Datatype())))

			err := c.Collect(ctx, func(rec record.Record) error {
				if rec.Datatype() != c.Datatype() {
					return fmt.Errorf("collect: %s emitted %s record", c.Interface(), rec.Datatype())
				}
				buffers[i] = append(buffers[i], rec)
				return nil
			})
			if err != nil {
				failures[i] = fmt.Errorf("collect: %s: %w", c.Interface(), err)
				r.log.Error("collecter failed",
					zap.String("interface", c.Interface()), zap.Error(err))
			}
			// Collection failures are reported after all sections are
			// written, never through the group: one bad backend must not
			// cancel its siblings.
			return nil
		})
	}
	_ = g.Wait()
	end := r.now().Unix()

	for i, c := range collecters {
		if len(buffers[i]) == 0 {
			continue
		}
		sw, err := r.w.Begin(datafile.Header{
			Start:     start,
			End:       end,
			Interface: c.Interface(),
			Datatype:  c.Datatype(),
		})
		if err != nil {
			return err
		}
		for _, rec := range buffers[i] {
			if err := sw.Write(rec); err != nil {
				return err
			}
		}
		if err := sw.Close(); err != nil {
			return err
		}
		r.log.Info("section written",
			zap.String("interface", c.Interface()),
			zap.Int("records", len(buffers[i])))
	}
	if err := r.w.Flush(); err != nil {
		return err
	}
	return errors.Join(failures...)
}
