package benchreport

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownStrategy    = errors.New("unknown strategy")
	ErrUnknownMetric      = errors.New("unknown metric")
	ErrAxisLength         = errors.New("series length does not match axis")
	ErrMissingMeasurement = errors.New("measurement not found")
	ErrZeroThroughput     = errors.New("throughput is zero")
	ErrArtifactNotFound   = errors.New("artifact not found in manifest")
)

// Strategy is a data-transfer strategy under comparison.
type Strategy string

const (
	TwoCopy  Strategy = "two_copy"
	OneCopy  Strategy = "one_copy"
	ZeroCopy Strategy = "zero_copy"
)

// Strategies lists every strategy in chart order.
var Strategies = []Strategy{TwoCopy, OneCopy, ZeroCopy}

func (s Strategy) String() string {
	switch s {
	case TwoCopy:
		return "TwoCopy"
	case OneCopy:
		return "OneCopy"
	case ZeroCopy:
		return "ZeroCopy"
	}
	return string(s)
}

func ParseStrategy(v string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "two_copy", "twocopy", "two-copy":
		return TwoCopy, nil
	case "one_copy", "onecopy", "one-copy":
		return OneCopy, nil
	case "zero_copy", "zerocopy", "zero-copy":
		return ZeroCopy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, v)
}

type Metric string

const (
	Throughput  Metric = "throughput_gbps"
	Latency     Metric = "latency_us"
	CycleCount  Metric = "cycle_count"
	CacheMisses Metric = "cache_misses_millions"
)

var Metrics = []Metric{Throughput, Latency, CycleCount, CacheMisses}

func ParseMetric(v string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range Metrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, v)
}

// Unit returns the axis label unit for the metric.
func (m Metric) Unit() string {
	switch m {
	case Throughput:
		return "Gbps"
	case Latency:
		return "us"
	case CycleCount:
		return "cycles"
	case CacheMisses:
		return "Millions"
	}
	return ""
}

type MessageSize struct {
	Label string `yaml:"label" json:"label"`
	Bytes int    `yaml:"bytes" json:"bytes"`
}

// KiB is the size in kibibytes, used as the x coordinate of size-grouped charts.
func (s MessageSize) KiB() float64 {
	return float64(s.Bytes) / 1024.0
}

func (s MessageSize) String() string { return s.Label }

var (
	DefaultThreads = []int{1, 2, 4, 8}
	DefaultSizes   = []MessageSize{
		{Label: "1K", Bytes: 1 << 10},
		{Label: "32K", Bytes: 32 << 10},
		{Label: "128K", Bytes: 128 << 10},
		{Label: "1MB", Bytes: 1 << 20},
	}
)

// DefaultDurationSeconds is the fixed duration of every measured run.
const DefaultDurationSeconds = 5.0
