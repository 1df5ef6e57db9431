package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/plus3/acsim/arena"
	"github.com/plus3/acsim/garage"
)

type options struct {
	garage  string
	formula string
	seed    uint64
	seedSet bool
	tick    time.Duration
	runs    int
	report  bool
}

func main() {
	garagePath := flag.String("garage", "", "Garage YAML document. The built-in duel is used when empty.")
	formulaPath := flag.String("formula", "", "Tengo combat formula: a file, or an embedded name such as glass_cannon.")
	seed := flag.Uint64("seed", 0, "Override the garage's random seed.")
	tick := flag.Duration("tick", 0, "Delay between frames. Zero runs frames back to back.")
	runs := flag.Int("runs", 1, "Number of simulations to run, with seeds counting up from the base seed.")
	watch := flag.Bool("watch", false, "Re-run whenever the garage or formula file changes.")
	report := flag.Bool("report", false, "Print a scheduler and storage report after the run.")
	verbose := flag.Bool("v", false, "Log simulation diagnostics.")
	flag.Parse()

	logger := log.New(os.Stderr, "acsim: ", log.LstdFlags)
	simLogger := log.New(io.Discard, "", 0)
	if *verbose {
		simLogger = logger
	}

	opts := options{
		garage:  *garagePath,
		formula: *formulaPath,
		seed:    *seed,
		tick:    *tick,
		runs:    max(*runs, 1),
		report:  *report,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.seedSet = true
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, opts, os.Stdout, simLogger)
	if !*watch {
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Print(err)
			os.Exit(1)
		}
		return
	}
	if err != nil {
		logger.Print(err)
	}

	if err := watchAndRun(ctx, opts, logger, simLogger); err != nil {
		logger.Print(err)
		os.Exit(1)
	}
}

// run loads the garage and formula, then plays opts.runs simulations. With more than
// one run the per-round text is suppressed and a survivor tally is printed instead.
func run(ctx context.Context, opts options, out io.Writer, logger *log.Logger) error {
	g, err := garage.Load(opts.garage)
	if err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return err
	}
	formula, err := garage.LoadFormula(opts.formula)
	if err != nil {
		return err
	}

	cfg := g.Config().WithDefaults()
	if opts.seedSet {
		cfg.Rules.Seed = opts.seed
	}

	rpt := &Report{
		Garage:  displayName(opts.garage, "built-in duel"),
		Formula: displayName(opts.formula, "built-in"),
		Rules:   cfg.Rules,
		Runs:    opts.runs,
		RunTime: Stats{Samples: make([]time.Duration, 0, opts.runs)},
	}
	runtime.ReadMemStats(&rpt.MemStatsStart)

	simOut := out
	if opts.runs > 1 {
		simOut = io.Discard
	}

	baseSeed := cfg.Rules.Seed
	start := time.Now()
	for i := range opts.runs {
		cfg.Rules.Seed = baseSeed + uint64(i)
		sim, err := arena.New(cfg,
			arena.WithOutput(simOut),
			arena.WithLogger(logger),
			arena.WithFormula(formula),
		)
		if err != nil {
			return err
		}

		runStart := time.Now()
		result, err := sim.Run(ctx, opts.tick)
		rpt.RunTime.Samples = append(rpt.RunTime.Samples, time.Since(runStart))
		if err != nil {
			return err
		}
		rpt.Record(result)
		rpt.Systems = sim.Stats().Systems
		rpt.Frames = sim.Stats().Frames
		rpt.Storage = sim.Storage().CollectStats()
	}
	rpt.TotalTime = time.Since(start)
	rpt.RunTime.Finalize()
	runtime.ReadMemStats(&rpt.MemStatsEnd)

	if opts.runs > 1 {
		for _, tally := range rpt.Tallies() {
			fmt.Fprintf(out, "%s survived %d of %d runs\n", tally.Name, tally.Count, opts.runs)
		}
		if rpt.NoSurvivor > 0 {
			fmt.Fprintf(out, "No pilot survived %d of %d runs\n", rpt.NoSurvivor, opts.runs)
		}
	}
	if opts.report {
		return rpt.Generate(out)
	}
	return nil
}

func watchAndRun(ctx context.Context, opts options, logger, simLogger *log.Logger) error {
	var files []string
	for _, path := range []string{opts.garage, opts.formula} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return errors.New("-watch needs a -garage or -formula file on disk")
	}

	w, err := garage.NewWatcher(files...)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	logger.Printf("watching %v", files)

	for {
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			logger.Printf("%s changed, re-running", name)
			if err := run(ctx, opts, os.Stdout, simLogger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Print(err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watch: %v", err)
		}
	}
}

func displayName(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}
