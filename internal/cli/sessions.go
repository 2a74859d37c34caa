package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(cmd.Context(), rootOpts, cmd)
		},
	}
}

func runSessions(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := opts.openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	sessions, err := app.Ledger.List(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	return opts.formatter(cmd).Success(sessions, func(w io.Writer) {
		if len(sessions) == 0 {
			fmt.Fprintln(w, "No sessions recorded.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CREATED\tID\tCATEGORY\tTEMPLATES\tTEXT")
		for _, s := range sessions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				s.CreatedAt.Format(time.RFC3339),
				s.ID,
				s.Category,
				strings.Join(s.MatchedTemplateIDs, ","),
				s.Text,
			)
		}
		_ = tw.Flush()
	})
}
