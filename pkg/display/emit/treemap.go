package emit

import (
	"fmt"
	"os"

	"github.com/ensoft/marple/pkg/datafile"
)

// writeTreemap emits the section as semicolon-separated hierarchy rows
// ("value;frame1;frame2;..."), the input format of the d3 treemap generator.
func writeTreemap(s *datafile.Section, base string, p Params) (string, error) {
	groups, err := stackGroups(s, p)
	if err != nil {
		return "", err
	}

	path := base + ".treemap.csv"
	err = writeFile(path, func(f *os.File) error {
		if _, err := fmt.Fprintln(f, "value;stack"); err != nil {
			return err
		}
		for _, g := range groups {
			if _, err := fmt.Fprintf(f, "%s;%s\n", formatWeight(g.Weight), g.Label); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
