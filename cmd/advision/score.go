package main

import (
	"github.com/jonathan/advision/internal/observability"
	"github.com/jonathan/advision/internal/readability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scoreText string
	scoreFile string
	scoreJSON bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the readability of ad copy",
	Long: "Computes Flesch Reading Ease, Flesch-Kincaid Grade Level and Gunning Fog for text " +
		"given with --text, read from --file, or piped on stdin.",
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreText, "text", "t", "", "Text to score")
	scoreCmd.Flags().StringVarP(&scoreFile, "file", "f", "", "File to score (- for stdin)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	text, err := readInput(cmd, scoreText, scoreFile)
	if err != nil {
		return err
	}

	report := readability.Analyze(text)
	logger.Debug("scored text",
		zap.Int("words", report.Counts.Words),
		zap.Int("sentences", report.Counts.Sentences))

	if scoreJSON {
		return writeJSON(cmd, report)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintReadability(report)
	return nil
}
