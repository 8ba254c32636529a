package benchreport

import "fmt"

// CyclesPerByte divides a raw cycle count by the bytes moved during a run of
// durationSeconds at throughputGbps. Zero throughput yields 0; use
// CyclesPerByteChecked to tell that case apart.
func CyclesPerByte(cycleCount, throughputGbps, durationSeconds float64) float64 {
	if throughputGbps == 0 {
		return 0
	}
	return cycleCount / TransferredBytes(throughputGbps, durationSeconds)
}

func CyclesPerByteChecked(cycleCount, throughputGbps, durationSeconds float64) (float64, error) {
	if throughputGbps == 0 {
		return 0, ErrZeroThroughput
	}
	return CyclesPerByte(cycleCount, throughputGbps, durationSeconds), nil
}

// TransferredBytes converts a throughput in Gbit/s sustained for durationSeconds into bytes.
func TransferredBytes(throughputGbps, durationSeconds float64) float64 {
	return throughputGbps * 1e9 / 8 * durationSeconds
}

// DegenerateCell names a cell whose efficiency could not be computed.
type DegenerateCell struct {
	Strategy Strategy
	Threads  int
	Size     string
}

func (c DegenerateCell) String() string {
	return fmt.Sprintf("%s threads=%d size=%s", c.Strategy, c.Threads, c.Size)
}

// EfficiencyBySize returns cycles per byte along the size axis for a fixed
// thread count. Cells with zero throughput hold 0 and are listed in the second
// return value.
func (d *Dataset) EfficiencyBySize(s Strategy, threads int) ([]float64, []DegenerateCell, error) {
	cycles, err := d.BySize(s, CycleCount, threads)
	if err != nil {
		return nil, nil, err
	}
	tp, err := d.BySize(s, Throughput, threads)
	if err != nil {
		return nil, nil, err
	}
	out := make([]float64, len(cycles))
	var degenerate []DegenerateCell
	for i := range cycles {
		v, err := CyclesPerByteChecked(cycles[i], tp[i], d.duration)
		if err != nil {
			degenerate = append(degenerate, DegenerateCell{Strategy: s, Threads: threads, Size: d.sizes[i].Label})
		}
		out[i] = v
	}
	return out, degenerate, nil
}

// Efficiency returns cycles per byte for a single cell.
func (d *Dataset) Efficiency(s Strategy, threads int, size string) (float64, error) {
	cycles, err := d.Value(s, CycleCount, threads, size)
	if err != nil {
		return 0, err
	}
	tp, err := d.Value(s, Throughput, threads, size)
	if err != nil {
		return 0, err
	}
	return CyclesPerByteChecked(cycles, tp, d.duration)
}
