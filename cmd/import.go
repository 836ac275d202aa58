package cmd

import (
	"fmt"
	"os"
	"strconv"

	"aero-importer/core/aero"
	"aero-importer/feature/importer"

	"github.com/goccy/go-json"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	importReq  importer.Request
	importJSON bool
)

// importCmd runs the import pipeline.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import aeronautical snapshots into the store",
	Long: `Parse OFMX, ARINC-424 and OpenAIR snapshots, reconcile them and upsert
the result into PostGIS. Locations are local files, zip archives or
s3://bucket/key objects. Without any location the configured sources are used.

Examples:
  # OFMX snapshot with its shape extension
  import --ofmx ofmx_lk.ofmx --shapes ofmx_lk_shapes.xml --cycle 2601

  # ARINC archive with OpenAIR shapes, planned only
  import --arinc ofm_ls.zip --openair ofm_ls.zip --dry-run

  # Archive stored in the snapshot bucket
  import --arinc 2601/ofm_ls.zip --bucket snapshots`,
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importReq.OFMX, "ofmx", "", "OFMX snapshot location")
	f.StringVar(&importReq.Shapes, "shapes", "", "OFMX shape extension location")
	f.StringVar(&importReq.ARINC, "arinc", "", "ARINC-424 snapshot location")
	f.StringVar(&importReq.OpenAIR, "openair", "", "OpenAIR shape file location")
	f.StringVar(&importReq.Cycle, "cycle", "", "AIRAC cycle (e.g. 2601) for sources that do not carry one")
	f.StringVar(&importReq.Bucket, "bucket", "", "Resolve plain locations inside this bucket")
	f.BoolVar(&importReq.DryRun, "dry-run", false, "Parse and reconcile without writing")
	f.BoolVar(&importReq.Migrate, "migrate", false, "Run migrations before loading")
	f.BoolVar(&importJSON, "json", false, "Print the run summary as JSON")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	rt, err := setup(!importReq.DryRun)
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	sum, err := rt.importer().Import(cmd.Context(), importReq)
	if sum != nil {
		if importJSON {
			data, merr := json.MarshalIndent(sum, "", "  ")
			if merr != nil {
				return fmt.Errorf("failed to marshal summary: %w", merr)
			}
			fmt.Fprintln(os.Stdout, string(data))
		} else if rerr := printSummary(sum); rerr != nil {
			return rerr
		}
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}

// printSummary renders the per-kind counts of a run.
func printSummary(sum *importer.RunSummary) error {
	data := pterm.TableData{{"Kind", "Parsed", "Rows", "Written", "Rejected"}}
	for _, kind := range aero.Kinds {
		rejected := 0
		for _, n := range sum.Rejected[kind] {
			rejected += n
		}
		written := "-"
		if !sum.DryRun {
			written = strconv.Itoa(sum.Written[kind])
		}
		data = append(data, []string{
			string(kind),
			strconv.Itoa(sum.Parsed[kind]),
			strconv.Itoa(sum.Entities[kind]),
			written,
			strconv.Itoa(rejected),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	pterm.Printf("Duplicates: %d  Unresolved: %d  Dropped geometries: %d  Duration: %s\n",
		sum.Duplicates, sum.Unresolved, sum.DroppedGeometries, sum.Duration)
	pterm.Printf("Shapes matched by id: %d  by name: %d  unmatched: %d\n",
		sum.Shapes.ByID, sum.Shapes.ByName, sum.Shapes.Unmatched)
	for _, f := range sum.ParseErrors {
		pterm.Printf("  %s %s stopped at line %d: %s\n", pterm.Red("x"), f.File, f.Line, f.Error)
	}
	for _, w := range sum.Warnings {
		pterm.Printf("  %s %s\n", pterm.Yellow("!"), w)
	}
	if sum.DryRun {
		pterm.Println(pterm.Gray("Dry run: nothing was written."))
	}
	return nil
}
