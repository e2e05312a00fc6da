package cmd

import (
	"fmt"

	"github.com/jjtimmons/tpfasta/internal/seqstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// indexCmd is for building a FASTA's positional index ahead of a curation
var indexCmd = &cobra.Command{
	Use:   "index [fasta]",
	Short: "Write a FASTA's positional index (<fasta>.fai)",
	Long: `Write a FASTA's positional index (<fasta>.fai) in samtools faidx format.

"curate" builds the index if it's missing. Building it ahead of time saves
reading the whole FASTA when the same assembly is curated more than once.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := seqstore.BuildIndex(args[0])
		if err != nil {
			return err
		}

		logger.Info("wrote FASTA index", zap.String("index", args[0]+seqstore.IndexSuffix), zap.Int("scaffolds", n))
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d scaffolds\n", args[0]+seqstore.IndexSuffix, n)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(indexCmd)
}
