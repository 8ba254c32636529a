package benchreport

import (
	"errors"
	"math"
)

// CellSummary compares the strategies at one (threads, size) point. Slices are
// indexed like Strategies.
type CellSummary struct {
	Threads         int
	Size            MessageSize
	ThroughputGbps  []float64
	LatencyUs       []float64
	CyclesPerByte   []float64
	ThroughputBest  Strategy
	LatencyBest     Strategy
	HasLatency      bool
	ZeroThroughputs []Strategy
}

// Summarize compares every strategy at every cell of the dataset, threads major.
// Latency is optional; throughput and cycle counts are required.
func (d *Dataset) Summarize() ([]CellSummary, error) {
	out := make([]CellSummary, 0, len(d.threads)*len(d.sizes))
	for _, t := range d.threads {
		for _, size := range d.sizes {
			c, err := d.summarizeCell(t, size)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func (d *Dataset) summarizeCell(threads int, size MessageSize) (CellSummary, error) {
	c := CellSummary{
		Threads:        threads,
		Size:           size,
		ThroughputGbps: make([]float64, len(Strategies)),
		LatencyUs:      make([]float64, len(Strategies)),
		CyclesPerByte:  make([]float64, len(Strategies)),
		HasLatency:     true,
	}
	bestTp, bestLat := math.Inf(-1), math.Inf(1)
	for i, s := range Strategies {
		tp, err := d.Value(s, Throughput, threads, size.Label)
		if err != nil {
			return CellSummary{}, err
		}
		c.ThroughputGbps[i] = tp
		if tp > bestTp {
			bestTp, c.ThroughputBest = tp, s
		}

		cpb, err := d.Efficiency(s, threads, size.Label)
		switch {
		case errors.Is(err, ErrZeroThroughput):
			c.ZeroThroughputs = append(c.ZeroThroughputs, s)
		case err != nil:
			return CellSummary{}, err
		}
		c.CyclesPerByte[i] = cpb

		lat, err := d.Value(s, Latency, threads, size.Label)
		switch {
		case errors.Is(err, ErrMissingMeasurement):
			c.HasLatency = false
		case err != nil:
			return CellSummary{}, err
		default:
			c.LatencyUs[i] = lat
			if lat < bestLat {
				bestLat, c.LatencyBest = lat, s
			}
		}
	}
	if !c.HasLatency {
		c.LatencyBest = ""
	}
	return c, nil
}

// Crossover returns the smallest message size at which challenger's throughput
// exceeds baseline's for the given thread count. ok is false when it never does.
func (d *Dataset) Crossover(challenger, baseline Strategy, threads int) (size MessageSize, ok bool, err error) {
	ch, err := d.BySize(challenger, Throughput, threads)
	if err != nil {
		return MessageSize{}, false, err
	}
	base, err := d.BySize(baseline, Throughput, threads)
	if err != nil {
		return MessageSize{}, false, err
	}
	for i := range ch {
		if ch[i] > base[i] {
			return d.sizes[i], true, nil
		}
	}
	return MessageSize{}, false, nil
}
