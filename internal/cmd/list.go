package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ensoft/marple/pkg/datafile"
	"github.com/ensoft/marple/pkg/record"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the sections of a data file",
	RunE: func(_ *cobra.Command, _ []string) error {
		f, err := readDataFile()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ENTRY\tINTERFACE\tDATATYPE\tRECORDS\tSIZE")
		for _, info := range f.List() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
				info.Index, info.Interface, info.Datatype, info.Records,
				humanize.IBytes(uint64(info.Size)))
		}
		return w.Flush()
	},
}

func init() {
	addInputFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}

var (
	infile          string
	legacyInterface string
	legacyDatatype  string
)

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&infile, "infile", "i", "", "data file to read")
	cmd.Flags().StringVar(&legacyInterface, "legacy-interface", "",
		"interface name assumed for headerless legacy files")
	cmd.Flags().StringVar(&legacyDatatype, "legacy-datatype", "",
		"datatype assumed for headerless legacy files, one of `point`, `event`, `stack`")
	must(cmd.MarkFlagRequired("infile"))
	must(cmd.MarkFlagFilename("infile"))
}

// readDataFile loads the input file, honoring the legacy headerless layout
// when the caller supplied implicit-header defaults.
func readDataFile() (*datafile.File, error) {
	var opts []datafile.ReaderOption
	if legacyDatatype != "" {
		opts = append(opts, datafile.WithLegacyHeader(datafile.Header{
			Interface: legacyInterface,
			Datatype:  record.Datatype(legacyDatatype),
		}))
	}
	return datafile.ReadFile(infile, opts...)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
