package tiers

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the tiers.yaml layout.
type File struct {
	Thresholds Thresholds   `yaml:"thresholds"`
	Rewards    RewardParams `yaml:"rewards"`
}

// DefaultFile returns a File with production defaults.
func DefaultFile() *File {
	return &File{
		Thresholds: DefaultThresholds(),
		Rewards:    DefaultRewardParams(),
	}
}

// LoadFile reads a tiers.yaml file from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tier config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing tier config: %w", err)
	}
	return &f, nil
}

// SaveFile writes a File to a YAML file.
func SaveFile(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling tier config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing tier config: %w", err)
	}
	return nil
}
