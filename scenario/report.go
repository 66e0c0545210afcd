package scenario

import (
	"gopkg.in/yaml.v3"

	"github.com/milk9111/tabletop/ecs/entity"
)

// Report is the outcome of a scenario run.
type Report struct {
	Script     string          `yaml:"script"`
	Scene      string          `yaml:"scene"`
	Seed       uint64          `yaml:"seed"`
	Steps      int             `yaml:"steps"`
	Broken     bool            `yaml:"broken"`
	Fragments  int             `yaml:"fragments"`
	BallRadius float64         `yaml:"ball_radius"`
	Clinks     int             `yaml:"clinks"`
	Impacts    []ImpactRecord  `yaml:"impacts,omitempty"`
	Breaks     []BreakRecord   `yaml:"breaks,omitempty"`
	Logs       []string        `yaml:"logs,omitempty"`
	Failures   []string        `yaml:"failures,omitempty"`
	Final      entity.Snapshot `yaml:"final"`
}

type ImpactRecord struct {
	Step          int     `yaml:"step"`
	Target        string  `yaml:"target"`
	Other         string  `yaml:"other"`
	Force         float64 `yaml:"force"`
	RelativeSpeed float64 `yaml:"relative_speed"`
}

type BreakRecord struct {
	Step          int     `yaml:"step"`
	Fragments     int     `yaml:"fragments"`
	Skipped       int     `yaml:"skipped,omitempty"`
	RelativeSpeed float64 `yaml:"relative_speed"`
}

func (r Report) Passed() bool {
	return len(r.Failures) == 0
}

func (r Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}
