package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScheduleFile is the fees.yaml layout: a base schedule plus named
// what-if scenarios.
type ScheduleFile struct {
	Base      FeeSchedule            `yaml:"base"`
	Scenarios map[string]FeeSchedule `yaml:"scenarios,omitempty"`
}

// DefaultSchedule returns the standard fee assumptions.
func DefaultSchedule() FeeSchedule {
	return FeeSchedule{
		CardFeePct:            0.015,
		InvestmentFeePct:      0.01,
		CryptoWithdrawFee:     5.0,
		FiatTransferFeePct:    0.02,
		MonthlyMaintenanceFee: 0,
	}
}

// LoadSchedules reads a fees.yaml file from disk.
func LoadSchedules(path string) (*ScheduleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fee schedule: %w", err)
	}
	var sf ScheduleFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing fee schedule: %w", err)
	}
	return &sf, nil
}

// SaveSchedules writes a ScheduleFile to a YAML file.
func SaveSchedules(path string, sf *ScheduleFile) error {
	data, err := yaml.Marshal(sf)
	if err != nil {
		return fmt.Errorf("marshaling fee schedule: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing fee schedule: %w", err)
	}
	return nil
}
