package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"aero-importer/core/aero"
	"aero-importer/feature/importer"
	"aero-importer/feature/validate"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ErrMismatch is returned when stored counts differ from the expected ones.
var ErrMismatch = errors.New("stored counts do not match")

var (
	validateSource   string
	validateCycle    string
	validateExpected string
	validateFormat   string
	validateSchema   bool
	validateReq      importer.Request
)

// validateCmd compares stored row counts with a snapshot.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compare stored row counts with a snapshot",
	Long: `Count the stored rows matching --source and --cycle and compare them with
the expected counts. Expected counts come from a JSON file (kind -> count) or,
without one, from a dry run over the given snapshot locations.

Examples:
  validate --source ofmx --cycle 2601 --ofmx ofmx_lk.ofmx
  validate --source arinc --expected counts.json --format yaml
  validate --schema`,
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateFormat, "format", "table", "Output format: table, json or yaml")
	f.BoolVar(&validateSchema, "schema", false, "Check the database schema against the models instead of counts")
	f.StringVar(&validateSource, "source", "", "Only count rows from this source (ofmx, arinc)")
	f.StringVar(&validateCycle, "cycle", "", "Only count rows from this AIRAC cycle")
	f.StringVar(&validateExpected, "expected", "", "JSON file with expected counts per kind")
	f.StringVar(&validateReq.OFMX, "ofmx", "", "OFMX snapshot to derive expected counts from")
	f.StringVar(&validateReq.Shapes, "shapes", "", "OFMX shape extension location")
	f.StringVar(&validateReq.ARINC, "arinc", "", "ARINC-424 snapshot to derive expected counts from")
	f.StringVar(&validateReq.OpenAIR, "openair", "", "OpenAIR shape file location")
	f.StringVar(&validateReq.Bucket, "bucket", "", "Resolve plain locations inside this bucket")

	RootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validateSchema {
		return runSchema()
	}

	filter, err := validate.ParseFilter(validateSource, validateCycle)
	if err != nil {
		return err
	}

	rt, err := setup(true)
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	svc := validate.NewService(rt.db, rt.importer(), rt.logger)

	var expected map[aero.Kind]int64
	if validateExpected != "" {
		expected, err = readExpected(validateExpected)
		if err != nil {
			return err
		}
	} else {
		validateReq.Cycle = validateCycle
		expected, err = svc.Expected(cmd.Context(), filter, validateReq)
		if err != nil {
			return fmt.Errorf("failed to derive expected counts: %w", err)
		}
	}

	report, err := svc.Validate(cmd.Context(), filter, expected)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if validateFormat == "table" {
		if err := printReport(report); err != nil {
			return err
		}
	} else if err := writeReport(report); err != nil {
		return err
	}

	if !report.Matched {
		return fmt.Errorf("%w: %v", ErrMismatch, report.Mismatches())
	}
	return nil
}

// runSchema reports drift between the models and the live tables.
func runSchema() error {
	rt, err := setup(true)
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	svc := validate.NewService(rt.db, nil, rt.logger)
	report, err := svc.CheckSchema()
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}

	if validateFormat == "table" {
		data := pterm.TableData{{"Table", "Missing columns", "Type mismatches"}}
		for name, t := range report.Tables {
			data = append(data, []string{name, strconv.Itoa(len(t.MissingColumns)), strconv.Itoa(len(t.TypeMismatches))})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
		for _, e := range report.Errors {
			pterm.Printf("  %s %s\n", pterm.Red("x"), e)
		}
	} else if err := writeReport(report); err != nil {
		return err
	}

	if !report.Matched {
		return errors.New("schema drift detected")
	}
	return nil
}

func readExpected(path string) (map[aero.Kind]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read expected counts: %w", err)
	}
	var raw map[string]int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid expected counts in %s: %w", path, err)
	}
	return validate.ParseExpected(raw)
}

// writeReport prints v as JSON or YAML depending on --format.
func writeReport(v any) error {
	var (
		data []byte
		err  error
	)
	switch validateFormat {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown format %q", validateFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func printReport(report *validate.Report) error {
	data := pterm.TableData{{"Kind", "Expected", "Actual", "Match"}}
	for _, kind := range aero.Kinds {
		k, ok := report.Kinds[kind]
		if !ok {
			continue
		}
		match := pterm.Green("yes")
		if !k.Match {
			match = pterm.Red("no")
		}
		data = append(data, []string{
			string(kind),
			strconv.FormatInt(k.Expected, 10),
			strconv.FormatInt(k.Actual, 10),
			match,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
