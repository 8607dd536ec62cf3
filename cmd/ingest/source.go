package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"localfeed/internal/domain/entity"
	srcUC "localfeed/internal/usecase/source"
)

type sourceFlags struct {
	name            string
	kind            string
	endpoint        string
	apiKey          string
	categories      []string
	locationBias    string
	requestsPerHour int
	active          bool
}

var (
	flagAdd    sourceFlags
	flagUpdate sourceFlags
)

type sourceOutput struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Kind     string        `json:"kind"`
	Provider string        `json:"provider"`
	Endpoint string        `json:"endpoint"`
	Active   bool          `json:"active"`
	Issues   []issueOutput `json:"issues,omitempty"`
}

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage registered sources",
	Long: `Register, update and remove ingestion sources. The provider of a source
is resolved from its kind and endpoint when it is added or updated.`,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSourceService(cmd, func(ctx context.Context, svc *srcUC.Service) error {
			return listSources(ctx, svc, cmd.OutOrStdout(), flagOutput)
		})
	},
}

var sourceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := srcUC.RegisterInput{
			Name:            flagAdd.name,
			Kind:            entity.SourceKind(flagAdd.kind),
			Endpoint:        flagAdd.endpoint,
			APIKey:          flagAdd.apiKey,
			Categories:      flagAdd.categories,
			LocationBias:    flagAdd.locationBias,
			RequestsPerHour: flagAdd.requestsPerHour,
			Active:          flagAdd.active,
		}
		return withSourceService(cmd, func(ctx context.Context, svc *srcUC.Service) error {
			return addSource(ctx, svc, in, cmd.OutOrStdout(), flagOutput)
		})
	},
}

var sourceUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change fields of a registered source",
	Long: `Only the flags that are given are changed. The provider is resolved
again from the resulting kind and endpoint.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSourceID(args[0])
		if err != nil {
			return err
		}
		in := srcUC.UpdateInput{
			ID:              id,
			Name:            flagUpdate.name,
			Kind:            entity.SourceKind(flagUpdate.kind),
			Endpoint:        flagUpdate.endpoint,
			APIKey:          flagUpdate.apiKey,
			LocationBias:    flagUpdate.locationBias,
			RequestsPerHour: flagUpdate.requestsPerHour,
		}
		if cmd.Flags().Changed("category") {
			in.Categories = flagUpdate.categories
		}
		if cmd.Flags().Changed("active") {
			active := flagUpdate.active
			in.Active = &active
		}
		return withSourceService(cmd, func(ctx context.Context, svc *srcUC.Service) error {
			return updateSource(ctx, svc, in, cmd.OutOrStdout(), flagOutput)
		})
	},
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a registered source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSourceID(args[0])
		if err != nil {
			return err
		}
		return withSourceService(cmd, func(ctx context.Context, svc *srcUC.Service) error {
			return removeSource(ctx, svc, id, cmd.OutOrStdout())
		})
	},
}

func init() {
	bindSourceFlags(sourceAddCmd, &flagAdd, "external", 24)
	sourceAddCmd.Flags().BoolVar(&flagAdd.active, "active", true, "fetch the source on scheduled runs")
	_ = sourceAddCmd.MarkFlagRequired("name")

	bindSourceFlags(sourceUpdateCmd, &flagUpdate, "", 0)
	sourceUpdateCmd.Flags().BoolVar(&flagUpdate.active, "active", true, "fetch the source on scheduled runs")

	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceUpdateCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
}

func bindSourceFlags(cmd *cobra.Command, f *sourceFlags, kind string, requestsPerHour int) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "display name, unique case-insensitively")
	flags.StringVar(&f.kind, "kind", kind, "source kind: external, local or rss")
	flags.StringVar(&f.endpoint, "endpoint", "", "API base URL or feed URL")
	flags.StringVar(&f.apiKey, "api-key", "", "credential for keyed providers")
	flags.StringSliceVar(&f.categories, "category", nil, "category hint (repeatable)")
	flags.StringVar(&f.locationBias, "location-bias", "", "default place for articles without one")
	flags.IntVar(&f.requestsPerHour, "requests-per-hour", requestsPerHour, "fetch budget per day, spread over 24h")
}

func withSourceService(cmd *cobra.Command, fn func(context.Context, *srcUC.Service) error) error {
	ctx := cmd.Context()
	svc, closeDB, err := newSourceService(ctx)
	if err != nil {
		return err
	}
	defer closeDB()
	return fn(ctx, svc)
}

func parseSourceID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid source id %q", arg)
	}
	return id, nil
}

func listSources(ctx context.Context, svc *srcUC.Service, w io.Writer, output string) error {
	sources, err := svc.List(ctx)
	if err != nil {
		return err
	}
	out := make([]sourceOutput, 0, len(sources))
	for _, src := range sources {
		out = append(out, toSourceOutput(src, entity.ConfigReport{}))
	}
	if output == "json" {
		return printJSON(w, out)
	}
	if len(out) == 0 {
		fmt.Fprintln(w, "no sources registered")
		return nil
	}
	for _, so := range out {
		fmt.Fprintf(w, "#%d %s (%s/%s, active=%t) %s\n", so.ID, so.Name, so.Kind, so.Provider, so.Active, so.Endpoint)
	}
	return nil
}

func addSource(ctx context.Context, svc *srcUC.Service, in srcUC.RegisterInput, w io.Writer, output string) error {
	src, report, err := svc.Register(ctx, in)
	if err != nil {
		return reportRefusal(w, "register", report, err)
	}
	return printSaved(w, "registered", src, report, output)
}

func updateSource(ctx context.Context, svc *srcUC.Service, in srcUC.UpdateInput, w io.Writer, output string) error {
	src, report, err := svc.Update(ctx, in)
	if err != nil {
		return reportRefusal(w, "update", report, err)
	}
	return printSaved(w, "updated", src, report, output)
}

func removeSource(ctx context.Context, svc *srcUC.Service, id int64, w io.Writer) error {
	if err := svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove source %d: %w", id, err)
	}
	fmt.Fprintf(w, "removed source #%d\n", id)
	return nil
}

// reportRefusal lists the configuration errors behind a refused change.
func reportRefusal(w io.Writer, op string, report entity.ConfigReport, err error) error {
	if errors.Is(err, srcUC.ErrInvalidSourceConfig) {
		printIssues(w, toIssueOutputs(report))
	}
	return fmt.Errorf("%s source: %w", op, err)
}

func printSaved(w io.Writer, verb string, src *entity.Source, report entity.ConfigReport, output string) error {
	so := toSourceOutput(src, report)
	if output == "json" {
		return printJSON(w, so)
	}
	fmt.Fprintf(w, "%s source #%d %s (provider %s)\n", verb, so.ID, so.Name, so.Provider)
	printIssues(w, so.Issues)
	return nil
}

func toSourceOutput(src *entity.Source, report entity.ConfigReport) sourceOutput {
	return sourceOutput{
		ID:       src.ID,
		Name:     src.Name,
		Kind:     string(src.Kind),
		Provider: string(src.Provider),
		Endpoint: src.Endpoint,
		Active:   src.Active,
		Issues:   toIssueOutputs(report),
	}
}
