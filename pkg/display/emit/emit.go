// Package emit writes the artifact each external visualizer consumes: a
// collapsed-stack file (plus pprof export) for flamegraph tooling, CSV data
// for treemap, heatmap and stackplot, and a timeline JSON for the event
// plotters. No graphical rendering happens here; emitters prepare input for
// the external renderers and report plain pass/fail.
package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ensoft/marple/pkg/aggregate"
	"github.com/ensoft/marple/pkg/datafile"
	"github.com/ensoft/marple/pkg/display"
)

// Params carries the rendering parameters shared by all emitters.
type Params struct {
	// OutDir receives the artifacts. Created if missing.
	OutDir string

	// TopN is the bucket count for top-N-plus-other aggregation.
	TopN int

	// Raw disables aggregation entirely: sections are emitted as collected.
	Raw bool
}

// Section writes the artifact of one section for the assigned visualizer
// and returns the artifact path.
func Section(v display.Visualizer, s *datafile.Section, p Params) (string, error) {
	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("emit: %w", err)
	}
	base := filepath.Join(p.OutDir, artifactName(s))

	switch v {
	case display.Flamegraph:
		return writeFlamegraph(s, base, p)
	case display.Treemap:
		return writeTreemap(s, base, p)
	case display.Heatmap:
		return writeHeatmap(s, base)
	case display.Stackplot:
		return writeStackplot(s, base, p)
	case display.G2, display.Eventplot:
		tl, err := aggregate.MergeEvents(s)
		if err != nil {
			return "", err
		}
		return writeTimeline(tl, base)
	}
	return "", fmt.Errorf("emit: no emitter for visualizer %q", v)
}

// Timeline writes the artifact of a merged multi-section timeline.
func Timeline(v display.Visualizer, name string, tl *aggregate.Timeline, p Params) (string, error) {
	switch v {
	case display.G2, display.Eventplot:
	default:
		return "", fmt.Errorf("emit: visualizer %q cannot render a merged timeline", v)
	}
	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("emit: %w", err)
	}
	return writeTimeline(tl, filepath.Join(p.OutDir, sanitize(name)))
}

func artifactName(s *datafile.Section) string {
	return fmt.Sprintf("%d_%s", s.Index, sanitize(s.Header.Interface))
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, name)
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("emit: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("emit: close %s: %w", path, err)
	}
	return nil
}
