// Command omen is the Ordered Markov ENumerator driver. It has two
// subcommands: `run`, the batch enumeration driver, and `inspect`, an
// interactive REPL for poking at a trained model. Wiring follows the
// .env-sourced defaults, a debug.log redirect, and SIGINT mapped to a
// distinct exit code.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/omenforge/omen/internal/boost"
	"github.com/omenforge/omen/internal/bus"
	"github.com/omenforge/omen/internal/checkpoint"
	"github.com/omenforge/omen/internal/config"
	"github.com/omenforge/omen/internal/driver"
	"github.com/omenforge/omen/internal/errs"
	"github.com/omenforge/omen/internal/inspect"
	"github.com/omenforge/omen/internal/model"
	"github.com/omenforge/omen/internal/progress"
	"github.com/omenforge/omen/internal/runlog"
	"github.com/omenforge/omen/internal/simulate"
	"github.com/omenforge/omen/internal/types"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if errs.Is(err, errs.KindInterrupted) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "omen",
		Short: "Ordered Markov ENumerator — probability-ordered password candidate generator",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newInspectCmd())
	return root
}

type runFlags struct {
	configPath   string
	testingSet   string
	alphaPath    string
	hintsPath    string
	pipeMode     bool
	endless      bool
	ignoreEP     bool
	fixedLength  int
	adaptive     bool
	lengthFactor float64
	override     int
	hasOverride  bool
	maxAttempts  uint64
	printWarn    bool
	boostEP      bool
	resultsDir   string
	resume       bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	env := config.LoadEnvDefaults()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the enumeration driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnumeration(cmd, f)
		},
	}

	defaultResultsDir := env.ResultsDir
	if defaultResultsDir == "" {
		defaultResultsDir = "results"
	}
	defaultMaxAttempts := uint64(1_000_000_000)
	if env.MaxAttempts != 0 {
		defaultMaxAttempts = env.MaxAttempts
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "model config file (required)")
	flags.StringVar(&f.testingSet, "testing-set", "", "testing-set file for attack simulation")
	flags.StringVar(&f.alphaPath, "alpha", "", "boosting alpha file")
	flags.StringVar(&f.hintsPath, "hints", "", "boosting hints file")
	flags.BoolVar(&f.pipeMode, "pipe", false, "write only to stdout, no result folder")
	flags.BoolVar(&f.endless, "endless", false, "ignore --max-attempts")
	flags.BoolVar(&f.ignoreEP, "ignore-ep", false, "do not check EP at candidate termination")
	flags.IntVar(&f.fixedLength, "fixed-length", 0, "pin enumeration to a single password length")
	flags.BoolVar(&f.adaptive, "adaptive-length", false, "use the crack-rate-adaptive length scheduler")
	flags.Float64Var(&f.lengthFactor, "length-level-factor", 0, "length scheduler L_eff factor")
	flags.IntVar(&f.override, "length-level-override", 0, "length scheduler L_eff override")
	flags.Uint64Var(&f.maxAttempts, "max-attempts", defaultMaxAttempts, "attempt budget cap")
	flags.BoolVar(&f.printWarn, "print-warnings", false, "print training/IO warnings to stderr")
	flags.BoolVar(&f.boostEP, "boost-ep", false, "also boost EP during boosting")
	flags.StringVar(&f.resultsDir, "results-dir", defaultResultsDir, "parent directory for per-run result folders")
	flags.BoolVar(&f.resume, "resume", false, "look for a checkpoint in this run's new results folder and log it if found; enumeration always starts from target_level 0")
	cmd.MarkFlagsMutuallyExclusive("fixed-length", "adaptive-length")
	return cmd
}

// runEnumeration reads --length-level-override's presence from cmd.Flags()
// directly since a zero value and "not set" both look like 0 on the int
// itself.
func runEnumeration(cmd *cobra.Command, f runFlags) error {
	if f.configPath == "" {
		return errs.New(errs.KindConfig, "run", fmt.Errorf("--config is required"))
	}
	if f.fixedLength > model.MaxPasswordLength {
		return errs.New(errs.KindConfig, "run", fmt.Errorf("--fixed-length %d exceeds the maximum password length %d", f.fixedLength, model.MaxPasswordLength))
	}
	if cmd.Flags().Changed("length-level-override") {
		f.hasOverride = true
	}

	runID := uuid.New().String()[:8]
	resultsDir := filepath.Join(f.resultsDir, runID)
	if !f.pipeMode {
		if err := os.MkdirAll(resultsDir, 0o755); err != nil {
			return errs.New(errs.KindIO, "run", err)
		}
	}

	var debugLog *os.File
	if !f.pipeMode {
		var err error
		debugLog, err = os.Create(filepath.Join(resultsDir, "debug.log"))
		if err != nil {
			return errs.New(errs.KindIO, "run", err)
		}
		defer debugLog.Close()
		log.SetOutput(debugLog)
	}

	m, err := model.Load(f.configPath)
	if err != nil {
		return err
	}

	b := bus.New()

	var sim *simulate.Simulator
	var tsWarnings []errs.Warning
	if f.testingSet != "" {
		sim, tsWarnings, err = simulate.LoadValidated(f.testingSet, m.Alphabet)
		if err != nil {
			return err
		}
	}

	var rlog *runlog.Log
	var rlogs *runlog.Registry
	if !f.pipeMode {
		rlogs = runlog.NewRegistry()
		rlog, err = rlogs.Open(runID, filepath.Join(resultsDir, "run.jsonl"))
		if err != nil {
			return err
		}
		defer rlogs.Close(runID)
	}

	var disp *progress.Display
	if !f.pipeMode {
		disp = progress.New(b, os.Stderr)
		defer disp.Stop()
	}

	if f.printWarn {
		warnings := b.Subscribe(types.EvtWarning)
		go func() {
			for evt := range warnings {
				if w, ok := evt.Payload.(types.Warning); ok {
					fmt.Fprintf(os.Stderr, "warning: %s\n", w.Text)
				}
			}
		}()
	}
	for _, w := range tsWarnings {
		b.Publish(types.Event{Type: types.EvtWarning, Payload: types.Warning{Kind: w.Kind, Line: w.Line, Text: w.Text}})
	}

	var ckpt *checkpoint.Store
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if !f.pipeMode {
		ckpt, err = checkpoint.Open(filepath.Join(resultsDir, "checkpoint"))
		if err != nil {
			return err
		}
		go ckpt.Run(ctx)
		defer ckpt.Close()
		if f.resume {
			if st, ok, err := ckpt.Load(); err == nil && ok {
				log.Printf("resume requested but checkpoint %s (attempts=%d) predates a fresh run ID; starting clean", st.RunID, st.Attempts)
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	sink := os.Stdout
	var sinkFile *os.File
	if !f.pipeMode {
		sinkFile, err = os.Create(filepath.Join(resultsDir, "createdPWs.txt"))
		if err != nil {
			return err
		}
		defer sinkFile.Close()
	}

	var progSink *simulate.ProgressSink
	if !f.pipeMode && sim != nil {
		crackedF, err := os.Create(filepath.Join(resultsDir, "graphCracked.txt"))
		if err != nil {
			return err
		}
		defer crackedF.Close()
		lengthF, err := os.Create(filepath.Join(resultsDir, "graphLength.txt"))
		if err != nil {
			return err
		}
		defer lengthF.Close()
		progSink = simulate.NewProgressSink(crackedF, lengthF, f.maxAttempts)
		defer progSink.Flush()
	}

	discipline := driver.DisciplineGlobal
	switch {
	case f.fixedLength > 0:
		discipline = driver.DisciplineFixed
	case f.adaptive:
		discipline = driver.DisciplineAdaptive
	}

	var override *int
	if f.hasOverride {
		override = &f.override
	}

	cfg := driver.Config{
		Discipline:     discipline,
		FixedLength:    f.fixedLength,
		IgnoreEP:       f.ignoreEP,
		EndlessMode:    f.endless,
		MaxAttempts:    f.maxAttempts,
		LengthFactor:   f.lengthFactor,
		LengthOverride: override,
		BoostEP:        f.boostEP,
		MinLength:      m.N - 1,
		MaxLength:      model.MaxPasswordLength - 1,
	}

	var out *os.File = sink
	if sinkFile != nil {
		out = sinkFile
	}

	d := driver.New(runID, m, cfg, sim, b, out, progSink, rlog)

	b.Publish(types.Event{Type: types.EvtRunStarted, Payload: types.RunStarted{
		RunID: runID, ModelNGram: m.N, Alphabet: m.Alphabet.String(),
		Discipline: string(discipline), MaxAttempts: f.maxAttempts,
	}})

	var state driver.State
	if f.alphaPath != "" && f.hintsPath != "" {
		alphas, err := boost.ReadAlphas(f.alphaPath)
		if err != nil {
			return err
		}
		hints, err := boost.ReadHints(f.hintsPath, len(alphas))
		if err != nil {
			return err
		}
		state, err = d.RunBoosted(ctx, hints, alphas)
		if err != nil {
			return err
		}
	} else {
		state, err = d.Run(ctx)
		if err != nil {
			return err
		}
	}

	b.Publish(types.Event{Type: types.EvtRunFinished, Payload: types.RunFinished{
		State: string(state), AttemptsTotal: d.Attempts(), CrackedCount: d.CrackedCount(),
	}})

	if ckpt != nil {
		ckpt.Write(checkpoint.State{RunID: runID, Attempts: d.Attempts(), CrackedCount: d.CrackedCount(), Discipline: string(discipline)})
	}

	if !f.pipeMode {
		logTxt, err := os.Create(filepath.Join(resultsDir, "log.txt"))
		if err != nil {
			return err
		}
		defer logTxt.Close()
		report := runlog.Report{
			RunID: runID, Alphabet: m.Alphabet.String(), NGram: m.N, MaxLevel: m.MaxLevel,
			Discipline: string(discipline), IgnoreEP: f.ignoreEP, MaxAttempts: f.maxAttempts,
			AttemptsTotal: d.Attempts(), CrackedCount: d.CrackedCount(), FinalState: string(state),
			CreatedLengths: d.CreatedLengths(),
		}
		if sim != nil {
			report.SizeTestingSet = sim.SizeOfTestingSet()
		}
		if err := runlog.RenderReport(logTxt, report); err != nil {
			return err
		}
		rlog.Write(runlog.Event{Kind: runlog.KindRunFinished, Attempts: d.Attempts(), Text: string(state)})
	}

	if state == driver.StateInterrupted {
		return errs.New(errs.KindInterrupted, "run", fmt.Errorf("interrupted"))
	}
	return nil
}

func newInspectCmd() *cobra.Command {
	var configPath, historyFile string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Interactively query a trained model",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := model.Load(configPath)
			if err != nil {
				return err
			}
			return inspect.Run(m, historyFile, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "model config file (required)")
	cmd.Flags().StringVar(&historyFile, "history", "", "readline history file")
	cmd.MarkFlagRequired("config")
	return cmd
}
