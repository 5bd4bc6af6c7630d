// Package driver implements the enumeration driver (component J): it
// composes the length scheduler, level-chain enumerator, candidate
// expander, boosting, and attack simulator, and owns the attempt budget
// and termination state. Grounded on enumNG.c's run_enumeration /
// run_enumeration_fixedLenghts / run_enumeration_optimizedLengths and the
// top-level main()/exit_routine() lifecycle.
package driver

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/omenforge/omen/internal/boost"
	"github.com/omenforge/omen/internal/bus"
	"github.com/omenforge/omen/internal/chain"
	"github.com/omenforge/omen/internal/expand"
	"github.com/omenforge/omen/internal/model"
	"github.com/omenforge/omen/internal/runlog"
	"github.com/omenforge/omen/internal/scheduler"
	"github.com/omenforge/omen/internal/simulate"
	"github.com/omenforge/omen/internal/types"
)

// State is a run's terminal outcome (spec §4.8).
type State string

const (
	StateRunning     State = "RUNNING"
	StateDone        State = "DONE"
	StateExhausted   State = "EXHAUSTED"
	StateError       State = "ERROR"
	StateInterrupted State = "INTERRUPTED"
)

// Discipline selects the length scheduler.
type Discipline string

const (
	DisciplineGlobal   Discipline = "global"
	DisciplineFixed    Discipline = "fixed"
	DisciplineAdaptive Discipline = "adaptive"
)

// Config holds the enumeration settings the driver reads; file paths,
// output and warning flags stay in cmd/omen.
type Config struct {
	Discipline     Discipline
	FixedLength    int
	IgnoreEP       bool
	EndlessMode    bool
	MaxAttempts    uint64
	LengthFactor   float64
	LengthOverride *int
	BoostEP        bool
	MinLength      int
	MaxLength      int // inclusive upper bound; must be <= len(Model.LN)-1
}

// epUsed is the single source of truth for whether EP participates in
// chain length and candidate acceptance.
func (c Config) epUsed() bool { return !c.IgnoreEP }

// Driver owns the model, sorted indices, attempt counter, simulator and
// scheduler state for one run.
type Driver struct {
	RunID string
	Model *model.Model
	Cfg   Config

	idx  *indicesHolder
	sim  *simulate.Simulator
	bus  *bus.Bus
	rlog *runlog.Log // nil-safe: Write/Close on a nil *Log are no-ops

	sink     io.Writer // created-passwords sink (createdPWs.txt, or stdout in pipe mode)
	progress *simulate.ProgressSink

	attempts       uint64
	crackedTotal   uint64
	createdLengths []uint64 // index length-1
}

// New builds a Driver. sim may be nil (no attack simulation: every
// candidate is just written to sink). progress and rlog may be nil; the
// driver is the sole writer of rlog's trace for the run named runID, so
// callers obtain it from a runlog.Registry keyed by the same runID.
func New(runID string, m *model.Model, cfg Config, sim *simulate.Simulator, b *bus.Bus, sink io.Writer, progress *simulate.ProgressSink, rlog *runlog.Log) *Driver {
	return &Driver{
		RunID:          runID,
		Model:          m,
		Cfg:            cfg,
		idx:            newIndicesHolder(m),
		sim:            sim,
		bus:            b,
		rlog:           rlog,
		sink:           sink,
		progress:       progress,
		createdLengths: make([]uint64, model.MaxPasswordLength),
	}
}

// Attempts returns the number of candidates emitted so far.
func (d *Driver) Attempts() uint64 { return d.attempts }

// CrackedCount returns the number of testing-set targets cracked so far.
func (d *Driver) CrackedCount() uint64 { return d.crackedTotal }

// CreatedLengths returns the per-length emission counts (budget law, spec §8).
func (d *Driver) CreatedLengths() []uint64 { return d.createdLengths }

func (d *Driver) publish(t types.EventType, payload any) {
	if d.bus == nil {
		return
	}
	d.bus.Publish(types.Event{Type: t, Payload: payload})
}

func (d *Driver) newScheduler() scheduler.Scheduler {
	n := d.Model.N
	ep := d.Cfg.epUsed()
	switch d.Cfg.Discipline {
	case DisciplineFixed:
		return scheduler.NewFixed(d.Cfg.FixedLength, n, ep, d.Model.MaxLevel)
	case DisciplineAdaptive:
		return scheduler.NewAdaptive(d.Cfg.MinLength, d.Cfg.MaxLength, n, ep, d.Model.MaxLevel)
	default:
		return scheduler.NewGlobal(d.Model.LN, d.Cfg.MinLength, d.Cfg.MaxLength, n, ep, d.Model.MaxLevel, d.Cfg.LengthOverride, d.Cfg.LengthFactor)
	}
}

// Run drives the plain (non-boosting) enumeration to completion, writing
// every emitted candidate to d.sink and checking it against d.sim if set.
func (d *Driver) Run(ctx context.Context) (State, error) {
	sched := d.newScheduler()
	w := bufio.NewWriter(d.sink)
	defer w.Flush()

	for {
		select {
		case <-ctx.Done():
			return StateInterrupted, nil
		default:
		}

		ticket, ok := sched.Next()
		if !ok {
			return StateExhausted, nil
		}
		d.publish(types.EvtChainAdvanced, types.ChainAdvanced{Length: ticket.Length, TargetLevel: ticket.TargetLevel})
		d.rlog.Write(runlog.Event{Kind: runlog.KindChainAdvanced, Length: ticket.Length, TargetLevel: ticket.TargetLevel})

		lengthLC := chain.Length(ticket.Length, d.Model.N, d.Cfg.epUsed())
		attemptsBefore, crackedBefore := d.attempts, d.crackedTotal
		terminal := State("")

		c := chain.New(lengthLC, ticket.TargetLevel, d.Model.MaxLevel)
		for c.Valid() {
			stop := d.runChain(ctx, c.Levels(), ticket.Length, w, &terminal)
			if stop || !c.Next() {
				break
			}
		}

		sched.Report(ticket, d.attempts-attemptsBefore, d.crackedTotal-crackedBefore)

		if terminal != "" {
			if err := w.Flush(); err != nil {
				return StateError, err
			}
			return terminal, nil
		}
	}
}

// runChain expands one chain, returning true if the caller should stop
// issuing further chains (budget exhausted, full crack, or interrupted).
func (d *Driver) runChain(ctx context.Context, levels []int, length int, w *bufio.Writer, terminal *State) bool {
	exp := expand.New(d.Model, d.idx.current())
	stop := false
	exp.Expand(levels, length, d.Cfg.epUsed(), func(cand []byte) bool {
		select {
		case <-ctx.Done():
			*terminal = StateInterrupted
			stop = true
			return false
		default:
		}

		d.attempts++
		if length-1 < len(d.createdLengths) {
			d.createdLengths[length-1]++
		}
		fmt.Fprintf(w, "%s\n", cand)

		if d.sim != nil {
			if d.sim.CheckCandidate(string(cand), length) {
				d.crackedTotal++
				d.publish(types.EvtTargetCracked, types.TargetCracked{Target: string(cand), Length: length, AttemptsAtHit: d.attempts})
				d.rlog.Write(runlog.Event{Kind: runlog.KindTargetCracked, Target: string(cand), Length: length, Attempts: d.attempts})
			}
		}
		if d.progress != nil {
			if d.progress.Sample(d.attempts, d.sim, length) {
				*terminal = StateDone
				stop = true
				return false
			}
		}
		if d.sim != nil && d.sim.FullyCracked() {
			*terminal = StateDone
			stop = true
			return false
		}
		if !d.Cfg.EndlessMode && d.attempts >= d.Cfg.MaxAttempts {
			*terminal = StateDone
			stop = true
			return false
		}
		return true
	})
	return stop
}

// RunBoosted drives the per-target boosting loop from spec §4.6: for each
// target read from the testing set (in file order), apply its hint line,
// rebuild sorted indices, run the scheduler until that single target is
// cracked or the (shared, global) budget is exhausted, then revert.
func (d *Driver) RunBoosted(ctx context.Context, hints [][]string, alphas []int) (State, error) {
	if d.sim == nil {
		return StateError, fmt.Errorf("boosting requires a testing set")
	}
	targets := d.sim.Targets()
	if len(hints) != len(targets) {
		return StateError, fmt.Errorf("hints count %d does not match testing-set target count %d", len(hints), len(targets))
	}

	w := bufio.NewWriter(d.sink)
	defer w.Flush()

	for i, target := range targets {
		select {
		case <-ctx.Done():
			return StateInterrupted, nil
		default:
		}

		snap := boost.Snap(d.Model)
		if err := boost.Apply(d.Model, hints[i], alphas, d.Cfg.BoostEP); err != nil {
			boost.Restore(d.Model, snap)
			return StateError, err
		}
		d.idx.rebuild(d.Model)
		d.publish(types.EvtBoostApplied, types.BoostApplied{Target: target})
		d.rlog.Write(runlog.Event{Kind: runlog.KindBoostApplied, Target: target})

		sched := d.newScheduler()
		crackedThisTarget := false
		terminal := State("")
		for !crackedThisTarget && terminal == "" {
			ticket, ok := sched.Next()
			if !ok {
				break
			}
			lengthLC := chain.Length(ticket.Length, d.Model.N, d.Cfg.epUsed())
			c := chain.New(lengthLC, ticket.TargetLevel, d.Model.MaxLevel)
			for c.Valid() {
				before := d.crackedTotal
				stop := d.runChainBoosted(ctx, c.Levels(), ticket.Length, w, target, &terminal)
				if d.crackedTotal != before {
					crackedThisTarget = true
				}
				if stop || !c.Next() {
					break
				}
			}
		}

		boost.Restore(d.Model, snap)
		d.idx.rebuild(d.Model)
		d.publish(types.EvtBoostReverted, types.BoostReverted{Target: target})
		d.rlog.Write(runlog.Event{Kind: runlog.KindBoostReverted, Target: target})

		if terminal == StateInterrupted || terminal == StateError {
			return terminal, nil
		}
	}
	if err := w.Flush(); err != nil {
		return StateError, err
	}
	return StateDone, nil
}

func (d *Driver) runChainBoosted(ctx context.Context, levels []int, length int, w *bufio.Writer, target string, terminal *State) bool {
	exp := expand.New(d.Model, d.idx.current())
	stop := false
	exp.Expand(levels, length, d.Cfg.epUsed(), func(cand []byte) bool {
		select {
		case <-ctx.Done():
			*terminal = StateInterrupted
			stop = true
			return false
		default:
		}
		d.attempts++
		if length-1 < len(d.createdLengths) {
			d.createdLengths[length-1]++
		}
		fmt.Fprintf(w, "%s\n", cand)

		if string(cand) == target {
			if d.sim.CheckCandidateBoost(string(cand), length) {
				d.crackedTotal++
				d.publish(types.EvtTargetCracked, types.TargetCracked{Target: target, Length: length, AttemptsAtHit: d.attempts})
				d.rlog.Write(runlog.Event{Kind: runlog.KindTargetCracked, Target: target, Length: length, Attempts: d.attempts})
			}
			stop = true
			return false
		}
		if !d.Cfg.EndlessMode && d.attempts >= d.Cfg.MaxAttempts {
			*terminal = StateDone
			stop = true
			return false
		}
		return true
	})
	return stop
}
