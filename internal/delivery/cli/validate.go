package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fse-compliance/internal/config"
	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/domain/repository"
	"github.com/fse-compliance/internal/infrastructure/geocoder"
	"github.com/fse-compliance/internal/pkg/logger"
	"github.com/fse-compliance/internal/usecase"
	"github.com/fse-compliance/internal/usecase/dto"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type validateOptions struct {
	file          string
	output        string
	asOf          string
	offline       bool
	failOnOverlap bool
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Classify sites and detect overlapping supply periods",
		Long: "Reads FSE rows from a CSV or JSON file, classifies each distinct site as inside\n" +
			"or outside the configured region and lists equipment with overlapping supply periods.\n" +
			"With --offline no geocoder is called and the region bounding box is used for every site.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "input file (.csv or .json) [REQUIRED]")
	f.StringVarP(&opts.output, "output", "o", outputTable, "output format (table, json)")
	f.StringVar(&opts.asOf, "as-of", "", "date substituted for missing supply dates (default: today)")
	f.BoolVar(&opts.offline, "offline", false, "skip reverse geocoding, classify by bounding box only")
	f.BoolVar(&opts.failOnOverlap, "fail-on-overlap", false, "exit with code 2 when overlaps are found")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runValidate(cmd *cobra.Command, root *rootOptions, opts *validateOptions) error {
	if opts.output != outputTable && opts.output != outputJSON {
		return fmt.Errorf("invalid output format: %s (must be table or json)", opts.output)
	}

	asOf := time.Now()
	if opts.asOf != "" {
		parsed, ok := domain.ParseDate(opts.asOf)
		if !ok {
			return fmt.Errorf("invalid --as-of date: %q (expected YYYY-MM-DD)", opts.asOf)
		}
		asOf = parsed
	}

	log := logger.NewCLI(root.verbose)
	defer log.Sync()

	cfg, err := config.LoadFile(root.configPath)
	if err != nil {
		return err
	}

	rows, err := ReadRowsFile(opts.file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.file, err)
	}
	log.Debug("Rows loaded", zap.String("file", opts.file), zap.Int("rows", len(rows)))

	var geocodeRepo repository.GeocodeRepository
	if !opts.offline {
		geocodeRepo = geocoder.New(cfg, nil, log, nil)
	}

	runner := usecase.NewBatchRunner(
		cfg.Classifier.BatchSize,
		cfg.Classifier.BatchCooldown,
		usecase.ContextSleep,
		log,
	)
	classifier := usecase.NewGeofenceClassifier(
		geocodeRepo,
		cfg.Region.ToDomain(),
		runner,
		cfg.Classifier.LookupTimeout,
		log,
		nil,
	)
	uc := usecase.NewValidationUseCase(classifier, nil, log, nil)

	result, err := uc.RunAsOf(cmd.Context(), rows, asOf)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.output == outputJSON {
		err = writeJSON(out, dto.NewValidationRunResponse(result))
	} else {
		err = writeTable(out, result, cfg.Region.Province)
	}
	if err != nil {
		return err
	}

	if opts.failOnOverlap && result.Stats.Overlapping > 0 {
		return fmt.Errorf("%w: %d records", ErrOverlapsFound, result.Stats.Overlapping)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, result *domain.ValidationResult, province string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"INSTANCE", "EQUIPMENT", "SITE", "LOCATION", "PERIOD", "OVERLAPS", "ISSUES"})

	for _, rr := range result.Records {
		if err := table.Append([]string{
			rr.Record.InstanceID,
			orDash(rr.Record.EquipmentKey),
			string(rr.SiteKey),
			locationLabel(rr.Classification),
			domain.FormatDate(rr.Record.ActiveFrom) + ".." + domain.FormatDate(rr.Record.ActiveTo),
			overlapLabel(rr),
			issuesLabel(rr.Record.DateIssues),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := result.Stats
	fmt.Fprintf(w, "\nRecords: %d  overlapping: %d  non-overlapping: %d\n", s.Total, s.Overlapping, s.NonOverlapping)
	fmt.Fprintf(w, "Inside %s: %d (%d overlapping)\n", province, s.InsideRegion, s.InsideRegionOverlapping)
	fmt.Fprintf(w, "Outside %s: %d (%d overlapping)\n", province, s.OutsideRegion, s.OutsideRegionOverlapping)
	fmt.Fprintf(w, "Invalid location: %d (%d overlapping)\n", s.InvalidLocation, s.InvalidLocationOverlapping)
	if s.DefaultedDates > 0 {
		fmt.Fprintf(w, "Records with defaulted dates: %d\n", s.DefaultedDates)
	}
	return nil
}

func locationLabel(c domain.ClassificationResult) string {
	switch {
	case c.Source == domain.SourceInvalid:
		return "invalid"
	case c.InsideRegion:
		return "inside (" + string(c.Source) + ")"
	default:
		return "outside (" + string(c.Source) + ")"
	}
}

func overlapLabel(rr domain.RecordResult) string {
	if len(rr.Overlaps) == 0 {
		return "-"
	}
	others := make([]string, 0, len(rr.Overlaps))
	for _, e := range rr.Overlaps {
		others = append(others, e.Other(rr.Record.InstanceID))
	}
	sort.Strings(others)
	return strings.Join(others, ",")
}

func issuesLabel(issues []domain.DateIssue) string {
	if len(issues) == 0 {
		return "-"
	}
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = string(issue)
	}
	return strings.Join(parts, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
