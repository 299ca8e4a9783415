package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leofalp/substack-tools/internal/server"
	substacktool "github.com/leofalp/substack-tools/providers/tool/substack"
)

// errToolFailed makes the process exit non-zero after a failed call; the
// tool output already describes the failure.
var errToolFailed = errors.New("tool call failed")

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(a.catalog, server.Options{
				Logger:      a.logger,
				CORSOrigins: a.cfg.HTTP.CORSOrigins,
				Classify: func(err error) string {
					return substacktool.Classify(err).String()
				},
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: $HTTP_ADDR or :8080)")
	return cmd
}

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json|-]",
		Short: "Run one tool and print its output",
		Long: `Run one tool and print its output. The input is a JSON object given as the
second argument, or read from stdin when the argument is "-".

Examples:
  substack-tools call substack_get_posts '{"publication_subdomain":"lenny","limit":5}'
  echo '{"publication_subdomains":["lenny","stratechery"]}' | substack-tools call substack_batch_get_posts -
  substack-tools call substack_list_categories`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := a.catalog.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown tool %q (run 'substack-tools tools' to list them)", args[0])
			}

			input := ""
			if len(args) == 2 {
				input = args[1]
				if input == "-" {
					b, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("reading input: %w", err)
					}
					input = string(b)
				}
			}

			output, err := t.Call(cmd.Context(), input)
			fmt.Fprintln(cmd.OutOrStdout(), output)
			if err != nil {
				return errToolFailed
			}
			return nil
		},
	}
}

func newToolsCmd(a *app) *cobra.Command {
	var withSchema bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, info := range a.catalog.Infos() {
				fmt.Fprintf(out, "%s\n  %s\n", info.Name, info.Description)
				if withSchema && info.Parameters != nil {
					schema, err := info.Parameters.JSONString(true)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s\n", schema)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withSchema, "schema", false, "Print each tool's parameter schema")
	return cmd
}
