package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/signalsfoundry/globe-quiz/core"
	"github.com/signalsfoundry/globe-quiz/internal/globe"
	"github.com/signalsfoundry/globe-quiz/internal/logging"
	"github.com/signalsfoundry/globe-quiz/kb"
	"github.com/signalsfoundry/globe-quiz/model"
	"github.com/signalsfoundry/globe-quiz/timectrl"
)

// simOptions controls one headless run.
type simOptions struct {
	CatalogPath string
	Focus       string
	Spin        time.Duration
	Sidereal    bool
	Duration    time.Duration
	Tick        time.Duration
	SettleDelay time.Duration
	PrintEvery  int
	Start       time.Time
}

// simResult is what the run ended on.
type simResult struct {
	Frames   int
	Settled  bool
	Rotation core.RotationState
	Front    core.FacingResult
	Country  model.Country
}

func main() {
	catalogPath := flag.String("catalog", "", "Country catalog file (.json, .yaml, optionally .zst); empty uses the built-in table")
	focus := flag.String("focus", "", "Country ID to bring to the front (after any spin)")
	spin := flag.Duration("spin", 0, "Spin the globe for this long before settling")
	sidereal := flag.Bool("sidereal", false, "Turn the globe with sidereal time instead of settling")
	duration := flag.Duration("duration", 10*time.Second, "Total frame time to simulate")
	tick := flag.Duration("tick", time.Second/60, "Frame interval")
	settle := flag.Duration("settle", globe.DefaultSettleDelay, "Idle time before the front country is evaluated")
	every := flag.Int("print-every", 30, "Print every Nth frame (0 prints only settle events)")
	flag.Parse()

	opts := simOptions{
		CatalogPath: *catalogPath,
		Focus:       *focus,
		Spin:        *spin,
		Sidereal:    *sidereal,
		Duration:    *duration,
		Tick:        *tick,
		SettleDelay: *settle,
		PrintEvery:  *every,
		Start:       time.Now().UTC(),
	}

	log := logging.NewFromEnv()
	if _, err := simulate(opts, os.Stdout, log); err != nil {
		fmt.Fprintf(os.Stderr, "globe-sim: %v\n", err)
		os.Exit(1)
	}
}

// simulate drives a globe on an accelerated clock and prints frames to w.
func simulate(opts simOptions, w io.Writer, log logging.Logger) (simResult, error) {
	catalog := kb.NewDefaultCatalog()
	if opts.CatalogPath != "" {
		catalog = kb.NewCatalog()
		summary, err := kb.OpenCatalogFile(catalog, opts.CatalogPath)
		if err != nil {
			return simResult{}, err
		}
		fmt.Fprintf(w, "Loaded catalog %s: %d countries\n", opts.CatalogPath, len(summary.CountryIDs))
	}
	if opts.Focus != "" {
		if _, err := catalog.GetCountry(opts.Focus); err != nil {
			return simResult{}, fmt.Errorf("focus %q: %w", opts.Focus, err)
		}
	}

	tc := timectrl.NewTimeController(opts.Start, opts.Tick, timectrl.Accelerated)
	driver := globe.NewDriver(catalog,
		globe.WithClock(tc),
		globe.WithLogger(log),
		globe.WithSettleDelay(opts.SettleDelay),
	)
	defer driver.Close()

	var focusAt <-chan time.Time
	switch {
	case opts.Sidereal:
		driver.SetModel(core.SiderealModel{})
	case opts.Spin > 0:
		driver.Spin(opts.Spin)
		if opts.Focus != "" {
			focusAt = tc.After(opts.Spin)
		}
	case opts.Focus != "":
		if _, _, err := driver.FocusOn(opts.Focus); err != nil {
			return simResult{}, err
		}
	}

	var res simResult
	tc.AddListener(func(now time.Time) {
		select {
		case <-focusAt:
			if c, _, err := driver.FocusOn(opts.Focus); err == nil {
				fmt.Fprintf(w, "[%s] focusing %s\n", now.Format(time.RFC3339Nano), c.DisplayName())
			}
		default:
		}

		f := driver.Tick(now)
		res.Frames++
		res.Rotation = f.Rotation
		if f.Settled && !res.Settled {
			fmt.Fprintf(w, "[%s] settled: front=%s (%s) score=%.4f\n",
				now.Format(time.RFC3339Nano), f.Front.CountryID, f.Country.DisplayName(), f.Front.Score)
		}
		res.Settled = f.Settled
		res.Front = f.Front
		res.Country = f.Country

		if opts.PrintEvery > 0 && res.Frames%opts.PrintEvery == 0 {
			fmt.Fprintf(w, "[%s] yaw=%+.4f pitch=%+.4f moving=%v\n",
				now.Format(time.RFC3339Nano), f.Rotation.Yaw, f.Rotation.Pitch, f.Moving)
		}
	})

	fmt.Fprintf(w, "Starting globe: duration=%s, tick=%s, countries=%d\n", opts.Duration, opts.Tick, catalog.Len())
	<-tc.Start(opts.Duration)

	if !res.Settled {
		front := driver.FrontFacing()
		res.Front = front
		if c, err := catalog.GetCountry(front.CountryID); err == nil {
			res.Country = c
		}
		fmt.Fprintf(w, "Still moving; facing now: %s (%s)\n", front.CountryID, res.Country.DisplayName())
	}
	fmt.Fprintln(w, "Simulation complete.")
	return res, nil
}
