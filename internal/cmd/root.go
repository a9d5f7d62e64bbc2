// Package cmd holds the mailbite command tree.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shandysiswandi/mailbite/internal/app"
)

// Config carries process-level settings into the command tree.
type Config struct {
	Out io.Writer
	// ShutdownTimeout bounds graceful shutdown in serve.
	ShutdownTimeout time.Duration
}

type runtimeState struct {
	configPath string
	out        io.Writer
}

// NewRootCommand builds the mailbite command.
func NewRootCommand(cfg Config) *cobra.Command {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	rt := &runtimeState{out: cfg.Out}

	root := &cobra.Command{
		Use:           "mailbite",
		Short:         "Email dispatch service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "config file (default $CONFIG_PATH or /config/config.yaml)")
	root.SetOut(cfg.Out)

	root.AddCommand(newServeCommand(rt, cfg.ShutdownTimeout), newTemplateCommand(rt))
	return root
}

func newServeCommand(rt *runtimeState, timeout time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and broker consumers",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			application := app.New(app.Options{ConfigPath: rt.configPath})
			<-application.Start()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			application.Stop(ctx)
			return nil
		},
	}
}

func newTemplateCommand(rt *runtimeState) *cobra.Command {
	tpl := &cobra.Command{
		Use:   "template",
		Short: "Work with email templates",
	}

	var req app.PreviewRequest
	render := &cobra.Command{
		Use:   "render [template]",
		Short: "Render a verification template to stdout without sending",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.Template = args[0]
			}

			body, err := app.Preview(cmd.Context(), app.Options{ConfigPath: rt.configPath}, req)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}

			_, err = fmt.Fprintln(rt.out, body)
			return err
		},
	}
	render.Flags().StringVar(&req.To, "to", "preview@example.com", "recipient")
	render.Flags().StringVar(&req.Username, "username", "", "username (defaults to the recipient)")
	render.Flags().StringVar(&req.VerificationCode, "code", "123456", "verification code")
	render.Flags().StringVar(&req.Subject, "subject", "", "subject")

	tpl.AddCommand(render)
	return tpl
}
