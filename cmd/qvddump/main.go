// qvddump inspects QVD files: header and layout summary, or the table rows
// as delimited text.
package main

import (
	"bufio"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qvdkit/qvd"
	"github.com/qvdkit/qvd/table"
)

var latin1 bool

func decodeOpts() []table.DecoderOption {
	var opts []table.DecoderOption
	if latin1 {
		opts = append(opts, table.WithLatin1Strings())
	}

	return opts
}

func runInfo(cmd *cobra.Command, args []string) error {
	tbl, err := qvd.ReadFile(args[0], decodeOpts()...)
	if err != nil {
		return err
	}

	layout := tbl.Layout()
	fmt.Printf("rows:             %d\n", layout.RowCount)
	fmt.Printf("record byte size: %d\n", layout.RecordByteSize)
	fmt.Printf("symbol region:    %d bytes\n", layout.SymbolRegionLength)
	fmt.Printf("index region:     %d bytes\n", layout.IndexRegionLength)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tSYMBOLS\tBIT OFFSET\tBIT WIDTH\tBIAS\tSYMBOL BYTES")
	for c, f := range layout.Fields {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n",
			f.Name, tbl.SymbolCount(c), f.BitOffset, f.BitWidth, f.Bias, f.SymbolLength)
	}

	return w.Flush()
}

func runCat(cmd *cobra.Command, args []string) error {
	tbl, err := qvd.ReadFile(args[0], decodeOpts()...)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(os.Stdout)
	for c, name := range tbl.Columns {
		if c > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, name)
	}
	fmt.Fprintln(w)

	for _, row := range tbl.Rows {
		for c, cell := range row {
			if c > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell.String())
		}
		fmt.Fprintln(w)
	}

	return w.Flush()
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "qvddump",
		Short:         "Inspect QlikView Data (QVD) files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&latin1, "latin1", false,
		"decode symbol strings as ISO 8859-1 instead of UTF-8")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "info FILE",
		Short: "Print the table layout: rows, record size, per-field bit slots",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "cat FILE",
		Short: "Print the table rows as tab-separated primary values",
		Args:  cobra.ExactArgs(1),
		RunE:  runCat,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
