package benchreport

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var ErrDuplicateMeasurement = errors.New("measurement defined twice")

// datasetFile is the on-disk layout of a measurement run. JSON input is accepted
// as well since it is a subset of YAML.
type datasetFile struct {
	Name            string         `yaml:"name"`
	DurationSeconds float64        `yaml:"duration_seconds"`
	Threads         []int          `yaml:"threads"`
	Sizes           []MessageSize  `yaml:"sizes"`
	Series          []seriesRecord `yaml:"series"`
}

// seriesRecord holds values along the size axis when Threads is set, or along
// the thread axis when Size is set.
type seriesRecord struct {
	Strategy string    `yaml:"strategy"`
	Metric   string    `yaml:"metric"`
	Threads  int       `yaml:"threads,omitempty"`
	Size     string    `yaml:"size,omitempty"`
	Values   []float64 `yaml:"values"`
}

type cell struct {
	strategy Strategy
	metric   Metric
	threads  int
	size     string
}

// Dataset is an immutable table of measurements indexed by strategy, metric,
// thread count and message size.
type Dataset struct {
	name     string
	duration float64
	threads  []int
	sizes    []MessageSize
	values   map[cell]float64
}

func (d *Dataset) Name() string { return d.name }

// DurationSeconds is the length of every measured run, used to turn throughput
// into transferred bytes.
func (d *Dataset) DurationSeconds() float64 { return d.duration }

func (d *Dataset) Threads() []int { return slices.Clone(d.threads) }

func (d *Dataset) Sizes() []MessageSize { return slices.Clone(d.sizes) }

// Len returns the number of stored cells.
func (d *Dataset) Len() int { return len(d.values) }

func (d *Dataset) Value(s Strategy, m Metric, threads int, size string) (float64, error) {
	v, ok := d.values[cell{strategy: s, metric: m, threads: threads, size: size}]
	if !ok {
		return 0, fmt.Errorf("%w: %s %s threads=%d size=%s", ErrMissingMeasurement, s, m, threads, size)
	}
	return v, nil
}

// BySize returns the metric for a fixed thread count, ordered like Sizes.
func (d *Dataset) BySize(s Strategy, m Metric, threads int) ([]float64, error) {
	out := make([]float64, 0, len(d.sizes))
	for _, size := range d.sizes {
		v, err := d.Value(s, m, threads, size.Label)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ByThreads returns the metric for a fixed message size, ordered like Threads.
func (d *Dataset) ByThreads(s Strategy, m Metric, size string) ([]float64, error) {
	out := make([]float64, 0, len(d.threads))
	for _, t := range d.threads {
		v, err := d.Value(s, m, t, size)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type Builder struct {
	ds  *Dataset
	err error
}

// NewBuilder starts a dataset over the given axes. Empty axes fall back to the
// defaults and a non-positive duration to DefaultDurationSeconds.
func NewBuilder(name string, durationSeconds float64, threads []int, sizes []MessageSize) *Builder {
	if durationSeconds <= 0 {
		durationSeconds = DefaultDurationSeconds
	}
	if len(threads) == 0 {
		threads = DefaultThreads
	}
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	return &Builder{ds: &Dataset{
		name:     name,
		duration: durationSeconds,
		threads:  slices.Clone(threads),
		sizes:    slices.Clone(sizes),
		values:   make(map[cell]float64),
	}}
}

// AddBySize records values along the size axis at a fixed thread count.
func (b *Builder) AddBySize(s Strategy, m Metric, threads int, values []float64) *Builder {
	if b.err != nil {
		return b
	}
	if len(values) != len(b.ds.sizes) {
		b.err = fmt.Errorf("%w: %s %s threads=%d has %d values, want %d", ErrAxisLength, s, m, threads, len(values), len(b.ds.sizes))
		return b
	}
	if !slices.Contains(b.ds.threads, threads) {
		b.err = fmt.Errorf("%s %s: thread count %d is not on the thread axis", s, m, threads)
		return b
	}
	for i, size := range b.ds.sizes {
		b.set(cell{strategy: s, metric: m, threads: threads, size: size.Label}, values[i])
	}
	return b
}

// AddByThreads records values along the thread axis at a fixed message size.
func (b *Builder) AddByThreads(s Strategy, m Metric, size string, values []float64) *Builder {
	if b.err != nil {
		return b
	}
	if len(values) != len(b.ds.threads) {
		b.err = fmt.Errorf("%w: %s %s size=%s has %d values, want %d", ErrAxisLength, s, m, size, len(values), len(b.ds.threads))
		return b
	}
	if !lo.ContainsBy(b.ds.sizes, func(ms MessageSize) bool { return ms.Label == size }) {
		b.err = fmt.Errorf("%s %s: size %q is not on the size axis", s, m, size)
		return b
	}
	for i, t := range b.ds.threads {
		b.set(cell{strategy: s, metric: m, threads: t, size: size}, values[i])
	}
	return b
}

func (b *Builder) set(c cell, v float64) {
	if b.err != nil {
		return
	}
	if _, ok := b.ds.values[c]; ok {
		b.err = fmt.Errorf("%w: %s %s threads=%d size=%s", ErrDuplicateMeasurement, c.strategy, c.metric, c.threads, c.size)
		return
	}
	b.ds.values[c] = v
}

// Build returns the dataset or the first error met while adding series. The
// builder must not be used afterwards.
func (b *Builder) Build() (*Dataset, error) {
	if b.err != nil {
		return nil, b.err
	}
	ds := b.ds
	b.ds = nil
	return ds, nil
}

func Parse(data []byte) (*Dataset, error) {
	var f datasetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	b := NewBuilder(f.Name, f.DurationSeconds, f.Threads, f.Sizes)
	for i, rec := range f.Series {
		s, err := ParseStrategy(rec.Strategy)
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", i, err)
		}
		m, err := ParseMetric(rec.Metric)
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", i, err)
		}
		switch {
		case rec.Threads > 0 && rec.Size == "":
			b.AddBySize(s, m, rec.Threads, rec.Values)
		case rec.Size != "" && rec.Threads == 0:
			b.AddByThreads(s, m, rec.Size, rec.Values)
		default:
			return nil, fmt.Errorf("series %d (%s %s): exactly one of threads or size must be set", i, s, m)
		}
	}
	return b.Build()
}

func Load(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if ds.name == "" {
		ds.name = path
	}
	return ds, nil
}
