package main

import (
	"fmt"
	"os"

	"github.com/jonathan/advision/internal/observability"
	"github.com/jonathan/advision/internal/palette"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var paletteJSON bool

var paletteCmd = &cobra.Command{
	Use:   "palette <image>",
	Short: "Extract the dominant colors of a logo",
	Long:  "Reads a PNG or JPEG image of at most 5MB and prints up to five dominant colors as hex codes.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPalette,
}

func init() {
	paletteCmd.Flags().BoolVar(&paletteJSON, "json", false, "Print the palette as JSON")
	rootCmd.AddCommand(paletteCmd)
}

func runPalette(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	pal, err := palette.ExtractReader(f)
	if err != nil {
		return err
	}
	logger.Debug("extracted palette", zap.String("mime_type", pal.MIMEType), zap.Strings("colors", pal.Colors))

	if paletteJSON {
		return writeJSON(cmd, pal)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintPalette(pal)
	return nil
}
