package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/dyike/EquilibriumGo/pkg/equilibrium"
)

type Config struct {
	ProjectDir string `json:"project_dir"`
	ResultsDir string `json:"results_dir"`

	// Equilibrium search
	SearchStep     float64 `json:"search_step"`
	MinSearchPrice float64 `json:"min_search_price"`
	SolverMethod   string  `json:"solver_method"`

	// Market chart
	PlotEnabled  bool    `json:"plot_enabled"`
	PlotMinPrice float64 `json:"plot_min_price"`
	PlotMaxPrice float64 `json:"plot_max_price"`
	PlotStep     float64 `json:"plot_step"`
	PlotFormat   string  `json:"plot_format"`

	LogLevel string `json:"log_level"`
	Debug    bool   `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := DefaultConfigWithRoot(currentDir)

	LoadDotEnv()
	cfg.ApplyEnv()

	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults rooted at dir, without
// consulting the environment.
func DefaultConfigWithRoot(dir string) *Config {
	return &Config{
		ProjectDir: dir,
		ResultsDir: filepath.Join(dir, "results"),

		SearchStep:     equilibrium.DefaultStep,
		MinSearchPrice: equilibrium.DefaultMinPrice,
		SolverMethod:   string(equilibrium.MethodGrid),

		PlotEnabled:  true,
		PlotMinPrice: 0.10,
		PlotMaxPrice: 4.99,
		PlotStep:     0.01,
		PlotFormat:   "png",

		LogLevel: "info",
		Debug:    false,
	}
}

// LoadDotEnv loads variables from a .env file in the working directory, if
// present. Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ApplyEnv overrides fields from EQGO_* environment variables. Unparsable
// values are ignored.
func (c *Config) ApplyEnv() {
	if val := os.Getenv("EQGO_PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("EQGO_RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}

	envFloat("EQGO_SEARCH_STEP", &c.SearchStep)
	envFloat("EQGO_MIN_SEARCH_PRICE", &c.MinSearchPrice)
	if val := os.Getenv("EQGO_SOLVER_METHOD"); val != "" {
		c.SolverMethod = strings.ToLower(val)
	}

	if val := os.Getenv("EQGO_PLOT_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.PlotEnabled = enabled
		}
	}
	envFloat("EQGO_PLOT_MIN_PRICE", &c.PlotMinPrice)
	envFloat("EQGO_PLOT_MAX_PRICE", &c.PlotMaxPrice)
	envFloat("EQGO_PLOT_STEP", &c.PlotStep)
	if val := os.Getenv("EQGO_PLOT_FORMAT"); val != "" {
		c.PlotFormat = strings.ToLower(val)
	}

	if val := os.Getenv("EQGO_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
	}
	if val := os.Getenv("EQGO_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

func envFloat(key string, dst *float64) {
	if val := os.Getenv(key); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = v
		}
	}
}

func (c *Config) Validate() error {
	if c.SearchStep <= 0 {
		return fmt.Errorf("search_step must be positive, got %v", c.SearchStep)
	}
	if c.MinSearchPrice <= 0 {
		return fmt.Errorf("min_search_price must be positive, got %v", c.MinSearchPrice)
	}
	if _, err := equilibrium.ParseMethod(c.SolverMethod); err != nil {
		return err
	}
	if c.PlotStep <= 0 {
		return fmt.Errorf("plot_step must be positive, got %v", c.PlotStep)
	}
	if c.PlotMinPrice <= 0 || c.PlotMaxPrice <= c.PlotMinPrice {
		return fmt.Errorf("invalid plot price range [%v, %v]", c.PlotMinPrice, c.PlotMaxPrice)
	}
	switch c.PlotFormat {
	case "png", "svg":
	default:
		return fmt.Errorf("unknown plot_format %q (want png or svg)", c.PlotFormat)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// Solver builds the equilibrium solver described by the config.
func (c *Config) Solver() (equilibrium.Solver, error) {
	method, err := equilibrium.ParseMethod(c.SolverMethod)
	if err != nil {
		return equilibrium.Solver{}, err
	}
	return equilibrium.Solver{
		Step:     c.SearchStep,
		MinPrice: c.MinSearchPrice,
		Method:   method,
	}, nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
