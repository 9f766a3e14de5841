package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/aretw0/weft/pkg/domain"
)

// offlineRuntime builds an engine for inspection commands without remote sinks.
func offlineRuntime(ctx context.Context, trace bool) (*cli.Runtime, error) {
	local := cfg
	local.Redis.Enabled = false
	local.Metrics.Enabled = false
	return cli.NewRuntime(ctx, local, logger, cli.Options{Trace: trace})
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the configured interception rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		out := cmd.OutOrStdout()

		if format == "yaml" {
			return config.WriteRules(out, cfg.Rules)
		}

		rt, err := offlineRuntime(cmd.Context(), false)
		if err != nil {
			return err
		}
		rules := rt.Engine.Rules()
		summaries := make([]domain.RuleSummary, 0, len(rules))
		for _, r := range rules {
			summaries = append(summaries, r.Summary())
		}

		switch format {
		case "json":
			return writeJSON(out, summaries)
		case "md", "":
			return render(out, tui.RulesMarkdown(summaries))
		default:
			return fmt.Errorf("unknown output format %q (md, yaml, json)", format)
		}
	},
}

var chainCmd = &cobra.Command{
	Use:   "chain <target>",
	Short: "Show the advice chain resolved for a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		out := cmd.OutOrStdout()

		rt, err := offlineRuntime(cmd.Context(), false)
		if err != nil {
			return err
		}
		c, err := rt.Engine.Chain(args[0])
		if err != nil {
			return err
		}

		switch format {
		case "json":
			return writeJSON(out, c.Steps())
		case "mermaid":
			_, err := io.WriteString(out, graph.GenerateMermaid(c, nil))
			return err
		case "md", "":
			return render(out, tui.ChainMarkdown(c.Target, c.Steps()))
		default:
			return fmt.Errorf("unknown output format %q (md, mermaid, json)", format)
		}
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List registered targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := offlineRuntime(cmd.Context(), false)
		if err != nil {
			return err
		}
		for _, t := range rt.Engine.Targets() {
			fmt.Fprintln(cmd.OutOrStdout(), t.Name)
		}
		return nil
	},
}

func render(w io.Writer, markdown string) error {
	f, _ := w.(*os.File)
	rendered, err := tui.NewRenderer(f)(markdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, rendered)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(rulesCmd, chainCmd, targetsCmd)
	rulesCmd.Flags().StringP("output", "o", "md", "Output format: md, yaml, json")
	chainCmd.Flags().StringP("output", "o", "md", "Output format: md, mermaid, json")
}
