package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func parseTOML(tomlFilePath string) (*StructuredConfig, error) {
	data, err := os.ReadFile(tomlFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a toml file: %w", err)
	}

	var tomlCfg fileConfig
	if err := toml.Unmarshal(data, &tomlCfg); err != nil {
		return nil, fmt.Errorf("error decoding toml configs: %w", err)
	}

	return tomlCfg.toStructured(), nil
}
