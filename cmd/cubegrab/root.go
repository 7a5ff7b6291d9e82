package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for cubegrab.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cubegrab",
		Short: "Download cubemap panoramas from tiled viewers",
		Long: `cubegrab downloads the tiles of a cubemap panorama, starting from the URL of
a single tile, and stitches them into an equirectangular image.

Two URL shapes are understood: tile pyramids (.../<face>/<zoom>/<row>_<col>.jpg)
and six whole-face images (..._f.jpg, ..._r.jpg, ...). Zoom levels and grid sizes
are discovered by probing the server.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewGrabCmd())
	cmd.AddCommand(NewClassifyCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
