package go2ds

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds the tunables of domain realization and the CLI.
type Config struct {

	// Epsilon is the largest per-axis move that still counts as "unchanged" during relaxation.
	Epsilon float64 `toml:"epsilon"`

	// CurvatureTolerance is the band around zero treated as Euclidean.
	CurvatureTolerance float64 `toml:"curvature_tolerance"`

	// MaxSolverIterations caps the regula falsi radius search.
	MaxSolverIterations int `toml:"max_solver_iterations"`

	// MaxRelaxPasses caps relaxation passes; 0 relaxes until convergence.
	MaxRelaxPasses int `toml:"max_relax_passes"`

	// CatalogPath is the default badger catalog directory; empty means in-memory.
	CatalogPath string `toml:"catalog_path"`

	// Verbosity is the klog -v level set by the CLI.
	Verbosity int `toml:"verbosity"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Epsilon:             1e-7,
		CurvatureTolerance:  1e-12,
		MaxSolverIterations: SolverIterations,
		MaxRelaxPasses:      0,
		Verbosity:           1,
	}
}

// LoadConfig reads a TOML file over DefaultConfig(). Keys missing from the file keep their defaults.
func LoadConfig(pathname string) (Config, error) {
	cfg := DefaultConfig()
	if len(pathname) == 0 {
		return cfg, nil
	}
	md, err := toml.DecodeFile(pathname, &cfg)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %q", pathname)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.Errorf("unknown config key %q in %q", undecoded[0].String(), pathname)
	}
	return cfg, cfg.Validate()
}

// Validate checks that every setting is usable.
func (cfg *Config) Validate() error {
	if cfg.Epsilon <= 0 {
		return errors.Wrap(ErrBadConfig, "epsilon must be > 0")
	}
	if cfg.CurvatureTolerance < 0 {
		return errors.Wrap(ErrBadConfig, "curvature_tolerance must be >= 0")
	}
	if cfg.MaxSolverIterations <= 0 {
		return errors.Wrap(ErrBadConfig, "max_solver_iterations must be > 0")
	}
	if cfg.MaxRelaxPasses < 0 {
		return errors.Wrap(ErrBadConfig, "max_relax_passes must be >= 0")
	}
	return nil
}
