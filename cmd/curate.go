package cmd

import (
	"fmt"

	"github.com/jjtimmons/tpfasta/config"
	"github.com/jjtimmons/tpfasta/internal/curate"
	"github.com/jjtimmons/tpfasta/internal/tpf"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// curateCmd is for re-assembling a FASTA from its tiling path
var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Convert a TPF and its original FASTA into a new FASTA",
	Long: `Convert a TPF and its original FASTA into a new FASTA - useful for curation.

Every "?" line of the TPF cuts a 1-based, inclusive range out of an original
scaffold. Ranges on the MINUS strand are reverse complemented. The cuts are
joined, in TPF order, into the new scaffold they're assigned to, with a run
of N's between each neighboring pair. GAP lines are skipped.

New scaffold names have their "RL_" prefix rewritten to "SUPER_" (see
--rename-from and --rename-to).

A report of the original ranges in each new scaffold is written beside the
output (debug.txt) or to --report.

The FASTA's positional index (<fasta>.fai) is used if present and built
otherwise.`,
	Example:                    "  tpfasta curate -f assembly.fa -t curated.tpf -o curated.fa -n 200",
	Args:                       cobra.NoArgs,
	SuggestionsMinimumDistance: 2,
	RunE:                       runCurate,
}

func runCurate(cmd *cobra.Command, args []string) error {
	c, err := config.New()
	if err != nil {
		return err
	}

	if c.Curate.Fasta == "" || c.Curate.TPF == "" {
		cmd.Help()
		return fmt.Errorf("both a FASTA (-f) and a TPF (-t) are needed")
	}

	policy := tpf.DefaultPlus
	if c.Curate.Orientation == "strict" {
		policy = tpf.Strict
	}

	return curate.Curate(curate.Options{
		Fasta:       c.Curate.Fasta,
		TPF:         c.Curate.TPF,
		Output:      c.Curate.Output,
		Report:      c.Curate.ReportPath(),
		GapLength:   &c.Curate.GapLength,
		LineWidth:   c.Curate.LineWidth,
		Rename:      &tpf.Rename{From: c.Curate.RenameFrom, To: c.Curate.RenameTo},
		Orientation: policy,
		WriteIndex:  c.Index.Write,
		Sort:        c.Curate.Sort,
		Logger:      logger,
	})
}

// set flags
func init() {
	flags := curateCmd.Flags()
	flags.StringP("fasta", "f", "", "input FASTA to re-organize")
	flags.StringP("tpf", "t", "", "TPF used to re-organize the input FASTA")
	flags.StringP("output", "o", curate.DefaultOutput, "output FASTA")
	flags.IntP("gap-length", "n", config.DefaultGapLength, "number of N's between joined fragments")
	flags.BoolP("sort", "s", false, "size sort the output (accepted, output stays in TPF order)")
	flags.String("report", "", "provenance report path (default debug.txt beside the output)")
	flags.String("rename-from", tpf.DefaultRename.From, "new scaffold name prefix to rewrite")
	flags.String("rename-to", tpf.DefaultRename.To, "prefix that replaces --rename-from")
	flags.Int("line-width", config.DefaultLineWidth, "bases per line in the output FASTA")
	flags.String("orientation", "plus", `orientations other than PLUS/MINUS: "plus" treats them as PLUS, "strict" fails`)
	flags.Bool("write-index", true, "save a built index beside the input FASTA")

	for _, name := range []string{"fasta", "tpf", "output", "gap-length", "sort", "report", "rename-from", "rename-to", "line-width", "orientation"} {
		viper.BindPFlag("curate."+name, flags.Lookup(name))
	}
	viper.BindPFlag("index.write-index", flags.Lookup("write-index"))

	RootCmd.AddCommand(curateCmd)
}
