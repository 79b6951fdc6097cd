package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"manimwatch/internal/render"
	"manimwatch/internal/watch"
)

// DefaultTick is the redraw interval while renders stream output.
const DefaultTick = 33 * time.Millisecond

// Config is the manimwatch configuration file (config.yaml).
type Config struct {
	Renderer  RendererConfig  `yaml:"renderer" json:"renderer"`
	Watch     WatchConfig     `yaml:"watch" json:"watch"`
	UI        UIConfig        `yaml:"ui" json:"ui"`
	Artifacts ArtifactsConfig `yaml:"artifacts" json:"artifacts"`
}

// RendererConfig controls how the renderer is invoked.
type RendererConfig struct {
	Command        string `yaml:"command" json:"command" jsonschema:"description=Renderer executable,default=manim"`
	PreviewCommand string `yaml:"preview_command" json:"preview_command" jsonschema:"description=Player passed to --preview_command,default=mpv"`
	Quality        string `yaml:"quality" json:"quality" jsonschema:"description=Initial quality,enum=l,enum=m,enum=h,enum=p,enum=k,default=l"`
}

// WatchConfig controls which changes trigger a render.
type WatchConfig struct {
	Dir      string   `yaml:"dir" json:"dir,omitempty" jsonschema:"description=Directory to watch; defaults to the current directory"`
	Pattern  string   `yaml:"pattern" json:"pattern" jsonschema:"description=Glob matched against changed file names,default=*.py"`
	Debounce Duration `yaml:"debounce" json:"debounce" jsonschema:"description=Repeat triggers for the same file inside this window are dropped"`
}

// UIConfig controls the terminal UI.
type UIConfig struct {
	Tick Duration `yaml:"tick" json:"tick" jsonschema:"description=Redraw interval"`
}

// ArtifactsConfig controls where rendered videos are moved.
type ArtifactsConfig struct {
	VideosDir string `yaml:"videos_dir" json:"videos_dir,omitempty" jsonschema:"description=Destination for moved videos; defaults to ~/Videos"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Renderer: RendererConfig{
			Command:        render.DefaultCommand,
			PreviewCommand: render.DefaultPreviewCommand,
			Quality:        render.Low.Symbol(),
		},
		Watch: WatchConfig{
			Pattern:  watch.DefaultPattern,
			Debounce: Duration(watch.DefaultDebounce),
		},
		UI: UIConfig{Tick: Duration(DefaultTick)},
	}
}

// Load reads the config file at path over the defaults. A missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Renderer.Command) == "" {
		return errors.New("renderer.command is empty")
	}
	if _, err := render.ParseQuality(c.Renderer.Quality); err != nil {
		return fmt.Errorf("renderer.quality: %w", err)
	}
	if _, err := glob.Compile(c.Watch.Pattern); err != nil {
		return fmt.Errorf("watch.pattern: %w", err)
	}
	if c.Watch.Debounce < 0 {
		return errors.New("watch.debounce is negative")
	}
	if c.UI.Tick <= 0 {
		return errors.New("ui.tick must be positive")
	}
	return nil
}

// Quality returns the configured initial quality.
func (c Config) Quality() render.Quality {
	return render.QualityFromSymbol(c.Renderer.Quality)
}
