package main

import (
	"github.com/jonathan/advision/internal/observability"
	"github.com/jonathan/advision/internal/repair"
	"github.com/spf13/cobra"
)

var (
	repairFile   string
	repairPretty bool
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Recover a JSON array from raw completion output",
	Long: "Strips prose and code fences from a completion reply, fixes common JSON syntax " +
		"errors and prints the recovered array. Unusable input prints an empty array.",
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().StringVarP(&repairFile, "file", "f", "", "File holding the reply (default stdin)")
	repairCmd.Flags().BoolVar(&repairPretty, "pretty", false, "Print a boxed summary instead of JSON")
	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, _ []string) error {
	content, err := readInput(cmd, "", repairFile)
	if err != nil {
		return err
	}

	items := repair.New(logger).Values(content)
	if repairPretty {
		observability.NewPrinter(cmd.OutOrStdout()).PrintRepaired(items)
		return nil
	}
	return writeJSON(cmd, items)
}
