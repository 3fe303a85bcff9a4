package main

import (
	"fmt"
	"io"
	"time"

	"escheck/internal/driver"
	"escheck/internal/pipeline"
)

// printTimings writes the headline, the per-stage durations and the phase
// table of a run.
func printTimings(out io.Writer, state *driver.RunState) {
	payload := state.TimingPayload()
	if out == nil || payload == nil {
		return
	}
	fmt.Fprintln(out, payload.Headline())
	for _, stage := range []pipeline.Stage{pipeline.StageCollect, pipeline.StageCheck, pipeline.StageReport} {
		if state.Timings.Has(stage) {
			fmt.Fprintf(out, "  %-8s %.1f ms\n", stage, toMillis(state.Timings.Duration(stage)))
		}
	}
	fmt.Fprint(out, state.Timer.Summary())
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
