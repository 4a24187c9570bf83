package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ensoft/marple/pkg/aggregate"
	"github.com/ensoft/marple/pkg/config"
	"github.com/ensoft/marple/pkg/datafile"
	"github.com/ensoft/marple/pkg/display"
	"github.com/ensoft/marple/pkg/display/emit"
	"github.com/ensoft/marple/pkg/record"
)

var (
	displayCmd = &cobra.Command{
		Use:   "display",
		Short: "Render sections of a data file with the matching visualizers",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDisplay()
		},
	}

	outDir     string
	configPath string
	entries    []int
	noAgg      bool

	// One override flag per visualizer, grouped per datatype family.
	flagFlamegraph bool
	flagTreemap    bool
	flagG2         bool
	flagEventplot  bool
	flagHeatmap    bool
	flagStackplot  bool
)

func init() {
	addInputFlags(displayCmd)
	displayCmd.Flags().StringVarP(&outDir, "outdir", "o", ".", "directory receiving the visualizer artifacts")
	displayCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to marple config file")
	displayCmd.Flags().IntSliceVarP(&entries, "entry", "e", nil, "select sections by entry index (default: all)")
	displayCmd.Flags().BoolVar(&noAgg, "noagg", false, "disable aggregation, render raw sections")

	displayCmd.Flags().BoolVar(&flagFlamegraph, "fg", false, "display stack data as flamegraph")
	displayCmd.Flags().BoolVar(&flagTreemap, "tm", false, "display stack data as treemap")
	displayCmd.Flags().BoolVar(&flagG2, "g2", false, "display event data with g2")
	displayCmd.Flags().BoolVar(&flagEventplot, "ep", false, "display event data as event plot")
	displayCmd.Flags().BoolVar(&flagHeatmap, "hm", false, "display point data as heatmap")
	displayCmd.Flags().BoolVar(&flagStackplot, "sp", false, "display point data as stackplot")
	displayCmd.MarkFlagsMutuallyExclusive("fg", "tm")
	displayCmd.MarkFlagsMutuallyExclusive("g2", "ep")
	displayCmd.MarkFlagsMutuallyExclusive("hm", "sp")

	must(displayCmd.MarkFlagFilename("config"))
	must(displayCmd.MarkFlagDirname("outdir"))
	rootCmd.AddCommand(displayCmd)
}

// overrides builds the per-datatype-family override set from the flags, at
// most one per family thanks to the mutually exclusive groups.
func overrides() display.Overrides {
	o := display.Overrides{}
	for flag, choice := range map[*bool]struct {
		dt record.Datatype
		v  display.Visualizer
	}{
		&flagFlamegraph: {record.DatatypeStack, display.Flamegraph},
		&flagTreemap:    {record.DatatypeStack, display.Treemap},
		&flagG2:         {record.DatatypeEvent, display.G2},
		&flagEventplot:  {record.DatatypeEvent, display.Eventplot},
		&flagHeatmap:    {record.DatatypePoint, display.Heatmap},
		&flagStackplot:  {record.DatatypePoint, display.Stackplot},
	} {
		if *flag {
			o[choice.dt] = choice.v
		}
	}
	return o
}

func runDisplay() error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	conf := config.Default()
	if configPath != "" {
		if conf, err = config.Parse(configPath); err != nil {
			return err
		}
	}

	f, err := readDataFile()
	if err != nil {
		return err
	}

	sections := f.Sections
	if len(entries) > 0 {
		if sections, err = f.SelectIndices(entries); err != nil {
			return err
		}
	}

	params := emit.Params{OutDir: outDir, TopN: conf.Display.Top, Raw: noAgg}
	over := overrides()

	var failures []error
	fail := func(err error) {
		log.Error("section failed", zap.Error(err))
		failures = append(failures, err)
	}

	if !noAgg {
		sections = mergeGroups(log, conf, sections, over, params, fail)
	}

	// Selector and aggregator failures abort only the affected section;
	// every other selected section still renders.
	for _, s := range sections {
		info := datafile.Info{
			Index:     s.Index,
			Interface: s.Header.Interface,
			Datatype:  s.Header.Datatype,
			Records:   s.Len(),
			Size:      s.Size,
		}
		assignment, err := display.Resolve(info, over, conf.Display.Interfaces)
		if err != nil {
			fail(err)
			continue
		}
		path, err := emit.Section(assignment.Visualizer, s, params)
		if err != nil {
			fail(fmt.Errorf("section %d (interface %q): %w", s.Index, s.Header.Interface, err))
			continue
		}
		log.Info("section rendered",
			zap.Int("section", s.Index),
			zap.String("interface", s.Header.Interface),
			zap.String("visualizer", string(assignment.Visualizer)),
			zap.String("artifact", path))
	}
	return errors.Join(failures...)
}

// mergeGroups renders each configured aggregate group whose interfaces are
// all present among the selected sections, and returns the sections not
// consumed by any group. An event-family override on the command line takes
// precedence over the group's configured visualizer.
func mergeGroups(log *zap.Logger, conf *config.Config, sections []*datafile.Section,
	over display.Overrides, params emit.Params, fail func(error)) []*datafile.Section {

	present := make(map[string][]*datafile.Section)
	for _, s := range sections {
		present[s.Header.Interface] = append(present[s.Header.Interface], s)
	}

	consumed := make(map[*datafile.Section]bool)
	for _, group := range conf.Aggregate {
		var grouped []*datafile.Section
		complete := true
		for _, iface := range group.Interfaces {
			if len(present[iface]) == 0 {
				complete = false
				break
			}
			grouped = append(grouped, present[iface]...)
		}
		if !complete {
			continue
		}

		tl, err := aggregate.MergeEvents(grouped...)
		if err != nil {
			fail(err)
			continue
		}
		vis := group.Visualizer
		if v, ok := over[record.DatatypeEvent]; ok {
			vis = v
		}
		name := strings.Join(group.Interfaces, "_")
		path, err := emit.Timeline(vis, name, tl, params)
		if err != nil {
			fail(fmt.Errorf("aggregate group %q: %w", name, err))
			continue
		}
		for _, s := range grouped {
			consumed[s] = true
		}
		log.Info("aggregate group rendered",
			zap.Strings("interfaces", group.Interfaces),
			zap.String("visualizer", string(vis)),
			zap.String("artifact", path))
	}

	var rest []*datafile.Section
	for _, s := range sections {
		if !consumed[s] {
			rest = append(rest, s)
		}
	}
	return rest
}
