package benchreport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/cpu"
)

const ManifestVersion = "1"

// Chart artifact IDs produced by the render stage.
const (
	ChartThroughput  = "throughput_grid"
	ChartLatency     = "latency_grid"
	ChartCacheMisses = "cache_misses"
	ChartEfficiency  = "efficiency_grid"
	ChartScaling     = "scaling_grid"
)

// ChartIDs lists every chart the render stage is expected to produce.
var ChartIDs = []string{ChartThroughput, ChartLatency, ChartCacheMisses, ChartEfficiency, ChartScaling}

type Encoding struct {
	Strategy Strategy `json:"strategy"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	Glyph    string   `json:"glyph"`
}

type Artifact struct {
	ID        string     `json:"id"`
	Path      string     `json:"path"`
	Title     string     `json:"title"`
	Panels    int        `json:"panels"`
	Bytes     int64      `json:"bytes"`
	Encodings []Encoding `json:"encodings"`
}

type ReportEnv struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	CPUModel      string `json:"cpu_model"`
	CPUNumLogical int    `json:"cpu_num_logical"`
}

type Manifest struct {
	Version          string     `json:"version"`
	RunID            string     `json:"run_id"`
	TimestampRFC3339 string     `json:"timestamp_rfc3339"`
	Dataset          string     `json:"dataset"`
	DurationSeconds  float64    `json:"duration_seconds"`
	Env              ReportEnv  `json:"env"`
	Artifacts        []Artifact `json:"artifacts"`
}

func NewManifest(ds *Dataset) *Manifest {
	return &Manifest{
		Version:          ManifestVersion,
		RunID:            uuid.NewString(),
		TimestampRFC3339: time.Now().Format(time.RFC3339),
		Dataset:          ds.Name(),
		DurationSeconds:  ds.DurationSeconds(),
		Env:              DetectEnv(),
	}
}

// DetectEnv describes the host the charts were rendered on.
func DetectEnv() ReportEnv {
	env := ReportEnv{
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		CPUModel:      runtime.GOARCH + " CPU",
		CPUNumLogical: runtime.NumCPU(),
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 && infos[0].ModelName != "" {
		env.CPUModel = strings.TrimSpace(infos[0].ModelName)
	}
	return env
}

func (m *Manifest) Add(a Artifact) {
	m.Artifacts = append(m.Artifacts, a)
}

func (m *Manifest) Lookup(id string) (Artifact, error) {
	a, ok := lo.Find(m.Artifacts, func(a Artifact) bool { return a.ID == id })
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %s", ErrArtifactNotFound, id)
	}
	return a, nil
}

// Missing returns the ids that have no artifact in the manifest.
func (m *Manifest) Missing(ids ...string) []string {
	have := lo.SliceToMap(m.Artifacts, func(a Artifact) (string, struct{}) { return a.ID, struct{}{} })
	return lo.Filter(ids, func(id string, _ int) bool {
		_, ok := have[id]
		return !ok
	})
}

// WriteFile stores the manifest as indented JSON. Artifacts under the
// manifest's directory are written relative to it so the output tree can be
// moved; anything else is written as an absolute path.
func (m *Manifest) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve manifest dir: %w", err)
	}
	out := *m
	out.Artifacts = make([]Artifact, len(m.Artifacts))
	for i, a := range m.Artifacts {
		p, err := artifactPath(absDir, a.Path)
		if err != nil {
			return fmt.Errorf("artifact %s: %w", a.ID, err)
		}
		a.Path = p
		out.Artifacts[i] = a
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// artifactPath is the on-disk form of path for a manifest living in absDir.
func artifactPath(absDir, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(abs), nil
	}
	return filepath.ToSlash(rel), nil
}

// ReadManifest loads a manifest and resolves relative artifact paths against its directory.
func ReadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range m.Artifacts {
		p := filepath.FromSlash(m.Artifacts[i].Path)
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		m.Artifacts[i].Path = p
	}
	return &m, nil
}
