package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
)

const DefaultFilename = "apidox.toml"

func configFilenames() []string {
	return []string{DefaultFilename, ".apidox.toml"}
}

func Load(configPath string) (*Config, error) {
	resolvedPath, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}

	absConfigPath, err := filepath.Abs(resolvedPath)
	if err != nil {
		return nil, oops.Wrapf(err, "resolving absolute config path")
	}

	cfg := &Config{}
	k := koanf.New(".")

	if loadErr := k.Load(file.Provider(absConfigPath), toml.Parser()); loadErr != nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			With("path", absConfigPath).
			Hint("Fix TOML syntax and required fields in your config").
			Wrapf(loadErr, "loading config from %q", absConfigPath)
	}

	if unmarshalErr := k.Unmarshal("", cfg); unmarshalErr != nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			With("path", absConfigPath).
			Hint("Fix config structure to match the apidox schema").
			Wrapf(unmarshalErr, "decoding config from %q", absConfigPath)
	}

	cfg.ConfigDir = filepath.Dir(absConfigPath)
	cfg.ApplyDefaults()

	if valErr := cfg.Validate(); valErr != nil {
		return nil, valErr
	}

	cfg.DocsDir = cfg.resolve(cfg.DocsDir)
	cfg.Output = cfg.resolve(cfg.Output)

	return cfg, nil
}

func FindConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", oops.Wrapf(err, "getting working directory")
	}

	for {
		foundPath, found, findErr := findConfigInDirectory(dir)
		if findErr != nil {
			return "", findErr
		}

		if found {
			return foundPath, nil
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			return "", oops.
				Code("CONFIG_NOT_FOUND").
				Hint("Run 'apidox init' to create a config file").
				Errorf("no apidox.toml or .apidox.toml found in any parent directory")
		}

		dir = parentDir
	}
}

// WriteStarter creates a starter apidox.toml in dir and returns its path.
func WriteStarter(dir string) (string, error) {
	path := filepath.Join(dir, DefaultFilename)

	if _, err := os.Stat(path); err == nil {
		return "", oops.
			Code("CONFIG_EXISTS").
			With("path", path).
			Hint("Edit the existing file or remove it first").
			Errorf("config file %q already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", oops.Wrapf(err, "checking for config file at %q", path)
	}

	if err := os.WriteFile(path, []byte(starterTemplate), 0o600); err != nil {
		return "", oops.
			Code("WRITE_FAILED").
			With("path", path).
			Wrapf(err, "writing starter config")
	}

	return path, nil
}

func resolveConfigPath(configPath string) (string, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", oops.
					Code("CONFIG_NOT_FOUND").
					With("path", configPath).
					Hint("Create the file or pass a valid --config path").
					Errorf("config file %q does not exist", configPath)
			}

			return "", oops.Wrapf(err, "checking config file %q", configPath)
		}

		return configPath, nil
	}

	return FindConfigFile()
}

func findConfigInDirectory(dir string) (string, bool, error) {
	for _, name := range configFilenames() {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, oops.Wrapf(err, "checking for config file at %q", path)
		}
	}

	return "", false, nil
}

const starterTemplate = `# apidox configuration

# Directory holding the generated reference markdown (classes/, interfaces/, modules/ ...).
docs_dir = "docs"

# Where the manifest and lock file are written.
output = ".apidox"

patterns = ["**/*.md"]
exclude = []
parallel = 4

# Token for github sources; GITHUB_TOKEN or GH_TOKEN are used when unset.
# github_token = ""

[display]
format = "table"
description_length = 60
default_limit = 50

# Remote reference markdown fetched by 'apidox sync'.
# [sources.viewer]
# url = "https://example.com/docs/classes/Core.Viewer.md"
# path = "classes/Core.Viewer.md"

# [sources.engine]
# type = "github"
# repo = "acme/engine"
# path = "docs/api"
# ref = "main"
# out = "engine"
`
