package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/export"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// token satisfies api.TokenSource for a single CLI run.
type token struct{ value string }

func (t *token) Token() string { return t.value }
func (t *token) Clear()        { t.value = "" }

type options struct {
	apiURL   string
	email    string
	password string
	category string
	status   string
	city     string
	query    string
	notes    bool
	output   string
	timeout  time.Duration
}

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	opts := options{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download job applications as an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, logger)
		},
		SilenceUsage: true,
	}
	f := cmd.Flags()
	f.StringVar(&opts.apiURL, "api", os.Getenv("API_BASE_URL"), "backend api base url")
	f.StringVar(&opts.email, "email", os.Getenv("EXPORT_EMAIL"), "admin email")
	f.StringVar(&opts.password, "password", os.Getenv("EXPORT_PASSWORD"), "admin password")
	f.StringVar(&opts.category, "category", "", "only export one job category")
	f.StringVar(&opts.status, "status", application.FilterAll, statusHelp())
	f.StringVar(&opts.city, "city", application.FilterAll, "only export applicants from this city")
	f.StringVarP(&opts.query, "query", "q", "", "search text")
	f.BoolVar(&opts.notes, "notes", false, "include comment and review notes columns")
	f.StringVarP(&opts.output, "output", "o", "", "output file, defaults to the dashboard file name")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "backend request timeout")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// statusHelp lists every status the --status flag accepts.
func statusHelp() string {
	names := make([]string, 0, len(application.Statuses)+1)
	for _, st := range application.Statuses {
		names = append(names, string(st))
	}
	names = append(names, application.FilterAll)
	return "only export one status: " + strings.Join(names, ", ")
}

func run(ctx context.Context, opts options, logger zerolog.Logger) error {
	if opts.apiURL == "" {
		return errors.New("--api cannot be empty")
	}
	if opts.email == "" || opts.password == "" {
		return errors.New("--email and --password are required")
	}
	filters := application.DefaultFilters()
	filters.Query = opts.query
	filters.City = opts.city
	if opts.status != application.FilterAll {
		st, ok := application.ParseStatus(opts.status)
		if !ok {
			return errors.Errorf("unknown status %q", opts.status)
		}
		filters.Status = string(st)
	}
	xopts := export.Options{IncludeNotes: opts.notes}
	filename := export.DashboardFilename(time.Now())
	var category application.Category
	if opts.category != "" {
		c, ok := application.ParseCategory(opts.category)
		if !ok {
			return errors.Errorf("unknown category %q", opts.category)
		}
		category = c
		xopts.Sheet = export.SheetName(c)
		filename = export.CategoryFilename(c)
	}
	if opts.output != "" {
		filename = opts.output
	}

	client := api.NewClient(opts.apiURL, &http.Client{Timeout: opts.timeout}, logger)
	sess, err := client.Login(ctx, opts.email, opts.password)
	if err != nil {
		return errors.Wrap(err, "unable to log in")
	}
	list, err := client.AllApplications(ctx, &token{value: sess.Token})
	if err != nil {
		return errors.Wrap(err, "unable to fetch applications")
	}
	list = application.ScopeToLocation(list, sess.User.LocationScope())
	if category != "" {
		list = application.FilterCategory(list, category)
	}
	list = application.Apply(list, filters)

	out, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", filename)
	}
	defer out.Close()
	if err := export.Write(out, list, xopts, "cli"); err != nil {
		return err
	}
	logger.Info().Int("rows", len(list)).Str("file", filename).Msg("export written")
	fmt.Println(filename)
	return nil
}
