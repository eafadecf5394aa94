package problem

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"

	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
)

const (
	DefaultInputSuffix  = "inp"
	DefaultOutputSuffix = "out"
)

type Limits struct {
	TimeSecs  float64 `toml:"time_secs"`
	MemoryMBs int     `toml:"memory_mbs"`
}

type Subtask struct {
	ID    int    `toml:"id"`
	Regex string `toml:"regex"`
	Score int    `toml:"score"`

	pattern *regexp.Regexp
}

// NewSubtask compiles the classification regex, anchored at the start of
// the filename the way re.match anchors.
func NewSubtask(id int, regex string, score int) (Subtask, error) {
	pattern, err := regexp.Compile("^(?:" + regex + ")")
	if err != nil {
		return Subtask{}, fmt.Errorf("subtask %d regex %q: %w", id, regex, err)
	}
	return Subtask{ID: id, Regex: regex, Score: score, pattern: pattern}, nil
}

// Match reports whether the test input filename belongs to this subtask.
// The pattern is anchored at the start of the basename, mirroring how
// problem authors write subtask regexes ("sub1.*" etc).
func (s *Subtask) Match(inputName string) bool {
	return s.pattern.MatchString(inputName)
}

type Solution struct {
	Name     string `toml:"name"`
	MinScore int    `toml:"min_score"`
	MaxScore int    `toml:"max_score"`
}

type Problem struct {
	Dir string `toml:"-"`

	Score        int    `toml:"score"`
	InputSuffix  string `toml:"input_suffix"`
	OutputSuffix string `toml:"output_suffix"`

	// Source filenames under input_validator/ and output_checker/.
	// An empty checker means "compare with diff -w".
	InputValidator string `toml:"input_validator"`
	Checker        string `toml:"checker"`

	// Optional S3 url of a zstd-compressed tar with the tests directory.
	TestsUrl string `toml:"tests_url"`

	Limits    Limits     `toml:"limits"`
	Subtasks  []Subtask  `toml:"subtasks"`
	Solutions []Solution `toml:"solutions"`
}

type configRoot struct {
	Problem   problemSection `toml:"problem"`
	Limits    Limits         `toml:"limits"`
	Subtasks  []Subtask      `toml:"subtasks"`
	Solutions []Solution     `toml:"solutions"`
}

type problemSection struct {
	Score          int    `toml:"score"`
	InputSuffix    string `toml:"input_suffix"`
	OutputSuffix   string `toml:"output_suffix"`
	InputValidator string `toml:"input_validator"`
	Checker        string `toml:"checker"`
	TestsUrl       string `toml:"tests_url"`
}

// Load reads and parses <dir>/problem.toml. Structural defects (unreadable
// file, bad TOML, regexes that do not compile) are returned as errors;
// semantic defects are reported by Validate.
func Load(dir string) (*Problem, error) {
	path := filepath.Join(dir, "problem.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem config: %w", err)
	}

	var root configRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	p := &Problem{
		Dir:            dir,
		Score:          root.Problem.Score,
		InputSuffix:    root.Problem.InputSuffix,
		OutputSuffix:   root.Problem.OutputSuffix,
		InputValidator: root.Problem.InputValidator,
		Checker:        root.Problem.Checker,
		TestsUrl:       root.Problem.TestsUrl,
		Limits:         root.Limits,
		Subtasks:       root.Subtasks,
		Solutions:      root.Solutions,
	}
	if p.InputSuffix == "" {
		p.InputSuffix = DefaultInputSuffix
	}
	if p.OutputSuffix == "" {
		p.OutputSuffix = DefaultOutputSuffix
	}

	for i := range p.Subtasks {
		st, err := NewSubtask(p.Subtasks[i].ID, p.Subtasks[i].Regex, p.Subtasks[i].Score)
		if err != nil {
			return nil, err
		}
		p.Subtasks[i] = st
	}

	return p, nil
}

// Validate checks the declared configuration invariants that do not require
// touching the filesystem. All defects found are returned, not just the
// first.
func (p *Problem) Validate() []report.Violation {
	var vs []report.Violation

	if p.Score < 0 {
		vs = append(vs, report.Violationf(report.Configuration,
			"problem score %d is negative", p.Score))
	}
	if p.Limits.TimeSecs <= 0 {
		vs = append(vs, report.Violationf(report.Configuration,
			"time limit %.2f secs must be positive", p.Limits.TimeSecs))
	}
	if p.Limits.MemoryMBs <= 0 {
		vs = append(vs, report.Violationf(report.Configuration,
			"memory limit %d MB must be positive", p.Limits.MemoryMBs))
	}
	if p.InputValidator == "" {
		vs = append(vs, report.Violationf(report.Configuration,
			"input_validator is not configured"))
	}
	if len(p.Subtasks) == 0 {
		vs = append(vs, report.Violationf(report.Configuration,
			"no subtasks configured"))
	}

	seen := map[int]bool{}
	sum := 0
	for _, st := range p.Subtasks {
		if st.Score < 0 {
			vs = append(vs, report.Violationf(report.Configuration,
				"subtask %d score %d is negative", st.ID, st.Score))
		}
		if seen[st.ID] {
			vs = append(vs, report.Violationf(report.Configuration,
				"duplicate subtask id %d", st.ID))
		}
		seen[st.ID] = true
		sum += st.Score
	}
	if sum != p.Score {
		vs = append(vs, report.Violationf(report.Configuration,
			"total score of all subtasks = %d, NOT matching problem score = %d", sum, p.Score))
	}

	for _, sol := range p.Solutions {
		if sol.MinScore < 0 || sol.MinScore > sol.MaxScore || sol.MaxScore > p.Score {
			vs = append(vs, report.Violationf(report.Configuration,
				"solution %s score band [%d, %d] is not within [0, %d]",
				sol.Name, sol.MinScore, sol.MaxScore, p.Score))
		}
	}

	return vs
}

func (p *Problem) TestsDir() string       { return filepath.Join(p.Dir, "tests") }
func (p *Problem) SubmissionsDir() string { return filepath.Join(p.Dir, "submissions") }

func (p *Problem) SubmissionPath(name string) string {
	return filepath.Join(p.SubmissionsDir(), name)
}

func (p *Problem) ValidatorPath() string {
	return filepath.Join(p.Dir, "input_validator", p.InputValidator)
}

// CheckerPath returns the checker source path, or "" when the problem uses
// the default diff comparison.
func (p *Problem) CheckerPath() string {
	if p.Checker == "" {
		return ""
	}
	return filepath.Join(p.Dir, "output_checker", p.Checker)
}
