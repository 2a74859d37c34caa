package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

func NewTemplatesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "templates [ID]",
		Short: "List templates or show one template in full",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runTemplates(cmd.Context(), rootOpts, cmd, id)
		},
	}
}

func runTemplates(ctx context.Context, opts *RootOptions, cmd *cobra.Command, id string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := opts.openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	out := opts.formatter(cmd)
	if id != "" {
		tpl, err := app.Templates.ByID(id)
		if err != nil {
			if domain.IsKind(err, domain.ErrTemplateNotFound) {
				return WrapExitError(ExitFailure, "unknown template", err)
			}
			return WrapExitError(ExitCommandError, "failed to read template", err)
		}
		return out.Success(tpl, func(w io.Writer) {
			fmt.Fprintf(w, "%s: %s\n", tpl.ID, tpl.Title)
			fmt.Fprintf(w, "Tags: %v\n\n%s\n", tpl.Tags, tpl.Content)
		})
	}

	all := app.Templates.All()
	summaries := make([]domain.TemplateSummary, 0, len(all))
	for _, tpl := range all {
		summaries = append(summaries, tpl.Summary())
	}
	return out.Success(summaries, func(w io.Writer) {
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\n", s.ID, s.Title)
		}
	})
}
