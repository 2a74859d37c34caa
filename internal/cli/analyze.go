package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

type AnalyzeOptions struct {
	*RootOptions
	Text     string
	Category string
	File     string
	MimeType string
}

func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a submission and record it in the ledger",
		Long: `Run one submission through the intake pipeline and append the session.

Examples:
  intakectl analyze --text "исковое заявление о разводе" --category civil
  intakectl analyze --text "жалоба" --category admin --file ./claim.txt --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Text, "text", "", "submission text")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category prefix used to filter templates")
	cmd.Flags().StringVar(&opts.File, "file", "", "document to attach")
	cmd.Flags().StringVar(&opts.MimeType, "mime", "", "media type of --file (default: by extension)")

	return cmd
}

func runAnalyze(ctx context.Context, opts *AnalyzeOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	submission := domain.Submission{Text: opts.Text, Category: opts.Category}

	if opts.File != "" {
		f, err := os.Open(opts.File)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open document", err)
		}
		defer f.Close()

		mimeType := opts.MimeType
		if mimeType == "" {
			mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(opts.File)))
		}
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		submission.Document = &domain.DocumentUpload{
			OriginalName: filepath.Base(opts.File),
			MimeType:     mimeType,
			Body:         f,
		}
	}

	app, err := opts.openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.IntakeUC.Handle(ctx, submission)
	if err != nil {
		return WrapExitError(ExitCommandError, "analyze failed", err)
	}

	return opts.formatter(cmd).Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "Tags:     %s\n", strings.Join(result.Tags, ", "))
		fmt.Fprintf(w, "Response: %s\n", result.AIResponse)
		if len(result.MatchedTemplates) == 0 {
			fmt.Fprintln(w, "Matched:  none")
		}
		for i, tpl := range result.MatchedTemplates {
			label := "          "
			if i == 0 {
				label = "Matched:  "
			}
			fmt.Fprintf(w, "%s%s (%s)\n", label, tpl.ID, tpl.Title)
		}
		if result.File != nil {
			fmt.Fprintf(w, "File:     %s -> %s\n", result.File.OriginalName, result.File.StoredName)
		}
		if result.Extracted != nil {
			fmt.Fprintf(w, "Name:     %s\n", valueOrDash(result.Extracted.Name))
			fmt.Fprintf(w, "Date:     %s\n", valueOrDash(result.Extracted.Date))
		}
	})
}

func valueOrDash(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}
