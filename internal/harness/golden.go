package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares its serialized trace
// against testdata/golden/<scenario.Name>.golden.
//
// To regenerate golden files after an intentional behavior change:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(s)
	if err != nil {
		return nil, err
	}

	buf, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	buf = append(buf, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, buf)

	return result, nil
}
