package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"localfeed/internal/domain/entity"
	pgRepo "localfeed/internal/infra/adapter/persistence/postgres"
	srcUC "localfeed/internal/usecase/source"
)

type issueOutput struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

type reportOutput struct {
	SourceID int64         `json:"source_id"`
	Name     string        `json:"name"`
	Provider string        `json:"provider"`
	Active   bool          `json:"active"`
	Valid    bool          `json:"valid"`
	Issues   []issueOutput `json:"issues"`
}

var flagValidateID int64

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Print configuration reports for registered sources",
	Long: `Validate every registered source (or one with --id) and print its errors
and warnings. Exits non-zero when any source has configuration errors.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, closeDB, err := newSourceService(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		reports, err := collectReports(ctx, svc, flagValidateID)
		if err != nil {
			return err
		}
		return printReports(cmd.OutOrStdout(), reports, flagOutput)
	},
}

func init() {
	validateCmd.Flags().Int64Var(&flagValidateID, "id", 0, "validate a single source (0 validates all)")
}

// newSourceService wires the source admin service to DATABASE_URL.
func newSourceService(ctx context.Context) (*srcUC.Service, func(), error) {
	catalog, err := loadCatalog()
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	database, err := openDatabase(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := &srcUC.Service{Repo: pgRepo.NewSourceRepo(database), Hosts: catalog.Providers}
	return svc, func() { _ = database.Close() }, nil
}

func collectReports(ctx context.Context, svc *srcUC.Service, id int64) ([]srcUC.Report, error) {
	if id <= 0 {
		return svc.ValidateAll(ctx)
	}
	src, err := svc.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	report, err := svc.Validate(ctx, id)
	if err != nil {
		return nil, err
	}
	return []srcUC.Report{{Source: src, Report: report}}, nil
}

// printReports writes reports and fails when any of them has errors.
func printReports(w io.Writer, reports []srcUC.Report, output string) error {
	out := make([]reportOutput, 0, len(reports))
	invalid := 0
	for _, r := range reports {
		ro := reportOutput{
			SourceID: r.Source.ID,
			Name:     r.Source.Name,
			Provider: string(r.Source.Provider),
			Active:   r.Source.Active,
			Valid:    r.Report.Valid(),
			Issues:   toIssueOutputs(r.Report),
		}
		if !ro.Valid {
			invalid++
		}
		out = append(out, ro)
	}

	if output == "json" {
		if err := printJSON(w, out); err != nil {
			return err
		}
	} else {
		for _, ro := range out {
			status := "OK"
			if !ro.Valid {
				status = "INVALID"
			}
			fmt.Fprintf(w, "[%s] #%d %s (%s, active=%t)\n", status, ro.SourceID, ro.Name, ro.Provider, ro.Active)
			printIssues(w, ro.Issues)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d sources have configuration errors", invalid, len(out))
	}
	return nil
}

func toIssueOutputs(r entity.ConfigReport) []issueOutput {
	issues := make([]issueOutput, 0, len(r.Errors)+len(r.Warnings))
	for _, group := range [][]entity.ConfigIssue{r.Errors, r.Warnings} {
		for _, issue := range group {
			issues = append(issues, issueOutput{Field: issue.Field, Message: issue.Message, Severity: string(issue.Severity)})
		}
	}
	return issues
}

func printIssues(w io.Writer, issues []issueOutput) {
	for _, issue := range issues {
		fmt.Fprintf(w, "    %-7s %s: %s\n", issue.Severity, issue.Field, issue.Message)
	}
}
