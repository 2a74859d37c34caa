package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func NewFilesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List stored uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd.Context(), rootOpts, cmd)
		},
	}
}

func runFiles(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := opts.openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	files, err := app.Storage.List(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list files", err)
	}

	return opts.formatter(cmd).Success(files, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
		for _, f := range files {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", f.StoredName, f.Size, f.ModifiedAt.Format(time.RFC3339))
		}
		_ = tw.Flush()
	})
}
