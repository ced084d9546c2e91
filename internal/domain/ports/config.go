package ports

import (
	"context"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

// ConfigLoader reads slidegen.toml files. A missing file is not an error:
// loaders return nil and the layer is skipped.
type ConfigLoader interface {
	// LoadGlobal reads ~/.config/slidegen/config.toml
	LoadGlobal(ctx context.Context) (*entities.Config, error)

	// LoadLocal reads slidegen.toml from dir, usually the directory of the input file
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)

	// LoadFile reads the file named by --config. Unlike the other layers it must exist.
	LoadFile(ctx context.Context, path string) (*entities.Config, error)

	// CreateDefaults writes the default config to path
	CreateDefaults(ctx context.Context, path string) error

	GetGlobalPath() string
	GetLocalPath(dir string) string
}

// ConfigMerger layers configurations. Later layers win for every field they set.
type ConfigMerger interface {
	Merge(configs ...*entities.Config) *entities.Config

	// ApplyFlags applies changed CLI flags, keyed by flag name
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config

	// ApplyEnvVars applies SLIDEGEN_* variables
	ApplyEnvVars(config *entities.Config) *entities.Config
}

// ConfigService resolves the effective configuration for one command run
type ConfigService interface {
	// LoadConfig merges defaults, global, local (from inputDir), --config, environment and flags
	LoadConfig(ctx context.Context, inputDir string, flags map[string]interface{}) (*entities.Config, error)

	GetDefaultConfig() *entities.Config
	ValidateConfig(config *entities.Config) error

	// CreateGlobalConfig writes the global file on first run
	CreateGlobalConfig(ctx context.Context) error
}
