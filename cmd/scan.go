package cmd

import (
	"fmt"

	"aero-importer/feature/ofmx"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	scanBucket string
	scanPrefix string
	scanExts   []string
)

// scanCmd lists the snapshots available for import.
var scanCmd = &cobra.Command{
	Use:   "scan [PATH]",
	Short: "List snapshots available for import",
	Long: `List the OFMX files under a local directory, or the snapshot objects
under a bucket prefix when --bucket is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			found []string
			err   error
		)
		if scanBucket != "" {
			rt, serr := setup(false)
			if serr != nil {
				return serr
			}
			defer rt.logger.Sync()
			found, err = rt.opener().List(cmd.Context(), scanBucket, scanPrefix, scanExts...)
		} else {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			found, err = ofmx.Scan(root)
		}
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		for _, name := range found {
			fmt.Println(name)
		}
		pterm.Printf("%s %d snapshot(s)\n", pterm.Gray("found"), len(found))
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanBucket, "bucket", "", "List objects in this bucket instead of a local directory")
	scanCmd.Flags().StringVar(&scanPrefix, "prefix", "", "Object key prefix")
	scanCmd.Flags().StringSliceVar(&scanExts, "ext", []string{".ofmx", ".xml", ".zip", ".pc", ".txt"}, "Object extensions to list")
	RootCmd.AddCommand(scanCmd)
}
