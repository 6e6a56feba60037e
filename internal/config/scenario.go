// Package config loads simulator scenarios and environment settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/memsim/mem/strategy"
)

// ErrInvalidScenario wraps every scenario validation problem.
var ErrInvalidScenario = errors.New("config: invalid scenario")

// Action operation names.
const (
	ActionAllocate   = "allocate"
	ActionDeallocate = "deallocate"
	ActionCompact    = "compact"
	ActionMerge      = "merge"
)

// Process is a named allocation request.
type Process struct {
	Name string `yaml:"name" json:"name"`
	Size int    `yaml:"size" json:"size"`
}

// Action is one step run after the initial processes are placed.
type Action struct {
	Op   string `yaml:"op" json:"op"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Size int    `yaml:"size,omitempty" json:"size,omitempty"`
}

// Scenario describes a complete simulator run.
type Scenario struct {
	TotalMemory  int       `yaml:"total_memory" json:"total_memory"`
	StrategyName string    `yaml:"strategy" json:"strategy"`
	Processes    []Process `yaml:"processes" json:"processes"`
	Actions      []Action  `yaml:"actions" json:"actions"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Strategy resolves the scenario's strategy name.
func (s *Scenario) Strategy() (strategy.Strategy, error) {
	return strategy.Parse(s.StrategyName)
}

// Validate reports every problem in the scenario at once.
func (s *Scenario) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if s.TotalMemory <= 0 {
		add("total_memory must be positive, got %d", s.TotalMemory)
	}
	if _, err := s.Strategy(); err != nil {
		errs = append(errs, err)
	}
	for i, p := range s.Processes {
		if p.Name == "" {
			add("processes[%d]: name is required", i)
		}
		if p.Size <= 0 {
			add("processes[%d] (%s): size must be positive, got %d", i, p.Name, p.Size)
		}
	}
	for i, a := range s.Actions {
		switch a.Op {
		case ActionAllocate:
			if a.Name == "" {
				add("actions[%d]: allocate needs a name", i)
			}
			if a.Size <= 0 {
				add("actions[%d] (%s): size must be positive, got %d", i, a.Name, a.Size)
			}
		case ActionDeallocate:
			if a.Name == "" {
				add("actions[%d]: deallocate needs a name", i)
			}
		case ActionCompact, ActionMerge:
		default:
			add("actions[%d]: unknown op %q", i, a.Op)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
}
