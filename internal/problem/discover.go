package problem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
)

// Test is a matched (input, expected output) file pair. Name is the input
// basename, which subtask regexes are matched against.
type Test struct {
	Name       string
	InputPath  string
	OutputPath string
}

// DiscoverTests walks the tests directory recursively and pairs every
// *.<input_suffix> file with its *.<output_suffix> sibling. Inputs without
// outputs and outputs without inputs are configuration violations; both
// directions are computed via set difference so that one pass lists every
// orphan.
func (p *Problem) DiscoverTests() ([]Test, []report.Violation, error) {
	inSuffix := "." + p.InputSuffix
	outSuffix := "." + p.OutputSuffix

	if _, err := os.Stat(p.TestsDir()); errors.Is(err, os.ErrNotExist) {
		return nil, []report.Violation{report.Violationf(report.Configuration,
			"tests directory not found at %s", p.TestsDir())}, nil
	}

	inputs := mapset.NewSet[string]()  // stems relative to tests dir
	outputs := mapset.NewSet[string]() // stems relative to tests dir

	err := filepath.WalkDir(p.TestsDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.TestsDir(), path)
		if err != nil {
			return err
		}
		// Large test files may be stored zstd-compressed; the testdata
		// store decompresses them when staging.
		rel = strings.TrimSuffix(rel, ".zst")
		switch {
		case strings.HasSuffix(rel, inSuffix):
			inputs.Add(strings.TrimSuffix(rel, inSuffix))
		case strings.HasSuffix(rel, outSuffix):
			outputs.Add(strings.TrimSuffix(rel, outSuffix))
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk tests directory: %w", err)
	}

	var vs []report.Violation
	for _, stem := range sorted(inputs.Difference(outputs)) {
		vs = append(vs, report.Violationf(report.Configuration,
			"output not found for input %s%s", stem, inSuffix))
	}
	for _, stem := range sorted(outputs.Difference(inputs)) {
		vs = append(vs, report.Violationf(report.Configuration,
			"input not found for output %s%s", stem, outSuffix))
	}

	// Classification and staging key tests by basename, so the same
	// filename in two subdirectories would shadow one of the tests.
	firstStem := map[string]string{}
	for _, stem := range sorted(inputs.Union(outputs)) {
		base := filepath.Base(stem)
		if prev, ok := firstStem[base]; ok {
			vs = append(vs, report.Violationf(report.Configuration,
				"tests %s%s and %s%s share the filename %s%s", prev, inSuffix, stem, inSuffix, base, inSuffix))
			continue
		}
		firstStem[base] = stem
	}

	var tests []Test
	for _, stem := range sorted(inputs.Intersect(outputs)) {
		tests = append(tests, Test{
			Name:       filepath.Base(stem) + inSuffix,
			InputPath:  filepath.Join(p.TestsDir(), stem+inSuffix),
			OutputPath: filepath.Join(p.TestsDir(), stem+outSuffix),
		})
	}
	return tests, vs, nil
}

// CheckSubmissionsDir reports submission sources present on disk but absent
// from the configured solution list. Extra files usually mean the config
// fell out of date.
func (p *Problem) CheckSubmissionsDir() ([]report.Violation, error) {
	entries, err := filepath.Glob(filepath.Join(p.SubmissionsDir(), "*.cpp"))
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	onDisk := mapset.NewSet[string]()
	for _, e := range entries {
		onDisk.Add(filepath.Base(e))
	}
	configured := mapset.NewSet[string]()
	for _, sol := range p.Solutions {
		configured.Add(sol.Name)
	}

	var vs []report.Violation
	extra := sorted(onDisk.Difference(configured))
	if len(extra) > 0 {
		vs = append(vs, report.Violationf(report.Warning,
			"found extra submissions (NOT in problem.toml): %s", strings.Join(extra, ", ")))
	}
	return vs, nil
}

func sorted(s mapset.Set[string]) []string {
	slice := s.ToSlice()
	sort.Strings(slice)
	return slice
}
