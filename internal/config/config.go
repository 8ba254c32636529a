package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Evidence struct {
	Label string  `yaml:"label"`
	Path  string  `yaml:"path"`
	Width float64 `yaml:"width"`
}

type QA struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type Config struct {
	Output struct {
		Dir       string `yaml:"dir"`
		ChartsDir string `yaml:"charts_dir"`
		Manifest  string `yaml:"manifest"`
		Document  string `yaml:"document"`
	} `yaml:"output"`

	Dataset struct {
		// Path to a YAML/JSON measurement file; empty selects the built-in run.
		Path string `yaml:"path"`
	} `yaml:"dataset"`

	Render struct {
		MaxConcurrency int     `yaml:"max_concurrency"`
		GridWidthIn    float64 `yaml:"grid_width_in"`
		GridHeightIn   float64 `yaml:"grid_height_in"`
		PanelWidthIn   float64 `yaml:"panel_width_in"`
		PanelHeightIn  float64 `yaml:"panel_height_in"`
		BarWidthIn     float64 `yaml:"bar_width_in"`
		BarHeightIn    float64 `yaml:"bar_height_in"`
		DPI            int     `yaml:"dpi"`
	} `yaml:"render"`

	Document struct {
		Title    string `yaml:"title"`
		Subtitle string `yaml:"subtitle"`
		Author   string `yaml:"author"`
	} `yaml:"document"`

	// Evidence lists the screenshots of the first section. An explicit empty
	// list turns the section off.
	Evidence []Evidence `yaml:"evidence"`

	// Report overrides the built-in narrative; empty fields keep the defaults.
	Report struct {
		Questions   []QA   `yaml:"questions"`
		Declaration string `yaml:"declaration"`
		RepoURL     string `yaml:"repo_url"`
	} `yaml:"report"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func Default() Config {
	var c Config
	c.Output.Dir = "out"
	c.Render.MaxConcurrency = 4
	c.Render.GridWidthIn = 14
	c.Render.GridHeightIn = 10
	c.Render.PanelWidthIn = 7
	c.Render.PanelHeightIn = 5
	c.Render.BarWidthIn = 8
	c.Render.BarHeightIn = 6
	c.Render.DPI = 100
	c.Document.Title = "PA02: Analysis of Network I/O Primitives"
	c.Document.Subtitle = "Two-copy vs one-copy vs zero-copy socket transfer"
	c.Evidence = []Evidence{
		{Label: "Server Output (Handling Requests):", Path: "screenshot_server.png", Width: 180},
		{Label: "Client Output (Throughput Results):", Path: "screenshot_client.png", Width: 180},
	}
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.resolve()
	return c
}

// resolve fills derived output paths that were left empty.
func (c *Config) resolve() {
	if c.Output.Dir == "" {
		c.Output.Dir = "out"
	}
	if c.Output.ChartsDir == "" {
		c.Output.ChartsDir = filepath.Join(c.Output.Dir, "charts")
	}
	if c.Output.Manifest == "" {
		c.Output.Manifest = filepath.Join(c.Output.Dir, "manifest.json")
	}
	if c.Output.Document == "" {
		c.Output.Document = filepath.Join(c.Output.Dir, "report.pdf")
	}
	if c.Render.MaxConcurrency <= 0 {
		c.Render.MaxConcurrency = 1
	}
}

// Load reads path on top of Default. When optional is set a missing file yields
// the defaults instead of an error.
func Load(path string, optional bool) (Config, error) {
	c := Default()
	// derived paths are recomputed from whatever output.dir the file sets
	c.Output.ChartsDir, c.Output.Manifest, c.Output.Document = "", "", ""
	b, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			c.resolve()
			return c, nil
		}
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	c.resolve()
	return c, nil
}
