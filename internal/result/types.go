package result

import "time"

// Summary is the persisted aggregate of one run. Individual outcomes are
// not stored; failures are listed so the failing subset can be re-run.
type Summary struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	DurationS float64          `json:"duration_s"`
	Workers   int              `json:"workers"`
	Total     int              `json:"total"`
	Failed    int              `json:"failed"`
	Programs  []ProgramSummary `json:"programs"`
	Failures  []Failure        `json:"failures"`
}

// OK reports whether every job completed with exit code 0.
func (s *Summary) OK() bool {
	return s.Failed == 0
}

type ProgramSummary struct {
	Name          string  `json:"name"`
	Jobs          int     `json:"jobs"`
	Failures      int     `json:"failures"`
	PassRate      float64 `json:"pass_rate"`
	MeanDurationS float64 `json:"mean_duration_s"`
}

type Failure struct {
	Index    int    `json:"index"`
	Program  string `json:"program"`
	Dataset  string `json:"dataset"`
	Test     string `json:"test"`
	Kind     string `json:"kind"`
	Output   string `json:"output"`
	Reason   string `json:"reason"`
	ExitCode int    `json:"exit_code,omitempty"`
}
