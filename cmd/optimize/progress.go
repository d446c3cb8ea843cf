package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// progress logs every evaluation to a CSV and keeps the best candidate seen.
// The CSV columns follow the parameter list, so it is written with
// encoding/csv rather than a tagged struct.
type progress struct {
	params   *ParamVector
	out      *csv.Writer
	console  io.Writer
	maxEvals int
	start    time.Time

	evals       int
	bestFitness float64
	bestParams  []float64
}

func newProgress(params *ParamVector, w, console io.Writer, maxEvals int) (*progress, error) {
	p := &progress{
		params:      params,
		out:         csv.NewWriter(w),
		console:     console,
		maxEvals:    maxEvals,
		start:       time.Now(),
		bestFitness: math.Inf(1),
	}
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := p.out.Write(header); err != nil {
		return nil, fmt.Errorf("writing log header: %w", err)
	}
	p.out.Flush()
	return p, p.out.Error()
}

// record logs one evaluation of the clamped raw values.
func (p *progress) record(values []float64, fitness, quality float64) {
	p.evals++
	if fitness < p.bestFitness {
		p.bestFitness = fitness
		p.bestParams = append(p.bestParams[:0], values...)
	}

	row := []string{strconv.Itoa(p.evals), fmt.Sprintf("%.6f", fitness), fmt.Sprintf("%.4f", quality)}
	for _, v := range values {
		row = append(row, fmt.Sprintf("%.6f", v))
	}
	p.out.Write(row)
	p.out.Flush()

	elapsed := time.Since(p.start)
	remaining := time.Duration(p.maxEvals-p.evals) * (elapsed / time.Duration(p.evals))

	// fitness = -(survival × (1 + 0.2×quality))
	survival := -fitness / (1.0 + 0.2*quality)
	fmt.Fprintf(p.console, "Eval %d/%d: survived=%.1fs quality=%.2f (best=%.1f) | elapsed: %s, ETA: %s\n",
		p.evals, p.maxEvals, survival, quality, p.bestFitness,
		formatDuration(elapsed), formatDuration(remaining))
}

// formatDuration formats a duration as 1h02m03s, or 2m03s below an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
