package ivp

import (
	"fmt"
	"os"
	"sync"

	kitlog "github.com/go-kit/kit/log"
)

/* Handles full integration runs over a stepper. */

// Runner drives a stepper to a terminal status and retains the accepted
// state history, which the stepper itself never keeps. The history feeds
// the dense-output builder and, optionally, a CSV export stream.
type Runner struct {
	Stepper   *RK
	States    []State
	logger    kitlog.Logger
	histChan  chan State
	wg        sync.WaitGroup
	exportErr error
}

// NewRunner returns a run driver over the given stepper. If conf requests an
// export, accepted states are streamed to the CSV writer on a buffered
// channel while the integration progresses.
func NewRunner(r *RK, conf ExportConfig) *Runner {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "ivp", "method", r.tb.Name)
	run := &Runner{Stepper: r, logger: klog}

	if !conf.IsUseless() {
		run.histChan = make(chan State, 1000) // a 1k entry buffer
		run.wg.Add(1)
		go func() {
			defer run.wg.Done()
			run.exportErr = StreamStates(conf, run.histChan)
		}()
	}
	return run
}

// LogStatus logs the current state of the stepper.
func (run *Runner) LogStatus() {
	run.logger.Log("level", "info", "status", run.Stepper.Status(), "t", run.Stepper.T(), "h", run.Stepper.StepSize())
}

// Run loops Step until the stepper reaches a terminal status. It returns an
// error when the run failed by step size underflow, or when the export
// stream failed; a boundary hit returns nil. Blocking.
func (run *Runner) Run() error {
	run.LogStatus()
	run.record(run.Stepper.CurrentState())

	for run.Stepper.Status() == Started || run.Stepper.Status() == Running {
		run.Stepper.Step()
		if run.Stepper.Status() == Failed {
			// The stagnated state duplicates the previous time, keep it out
			// of the history so the dense output stays well posed.
			break
		}
		run.record(run.Stepper.CurrentState())
	}
	if run.histChan != nil {
		close(run.histChan)
		run.wg.Wait() // Don't return until we're done writing the file.
	}

	stats := run.Stepper.Stats()
	run.logger.Log("level", "notice", "status", run.Stepper.Status(), "t", run.Stepper.T(),
		"steps", stats.StepCount, "rejected", stats.RejectedCount, "evals", stats.EvaluationCount)

	if run.Stepper.Status() == Failed {
		run.logger.Log("level", "critical", "status", "failed", "t", run.Stepper.T())
		return fmt.Errorf("ivp: step size underflow at t=%g", run.Stepper.T())
	}
	return run.exportErr
}

// Spline builds the continuous extension over the retained history.
func (run *Runner) Spline() (Interpolant, error) {
	return run.Stepper.Spline(run.States)
}

func (run *Runner) record(st State) {
	run.States = append(run.States, st)
	if run.histChan != nil {
		run.histChan <- st
	}
}
