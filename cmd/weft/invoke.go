package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/weft/internal/presentation/graph"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <target> [args...]",
	Short: "Call a target through its advice chain",
	Long: `Invokes a registered target once. Arguments are passed as strings and
coerced to the parameter types of the target.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trace, _ := cmd.Flags().GetBool("trace")
		out := cmd.OutOrStdout()

		rt, err := offlineRuntime(cmd.Context(), true)
		if err != nil {
			return err
		}

		callArgs := make([]any, 0, len(args)-1)
		for _, a := range args[1:] {
			callArgs = append(callArgs, a)
		}

		res, invokeErr := rt.Engine.Invoke(cmd.Context(), args[0], callArgs...)

		if trace {
			for _, e := range rt.Trace.Events() {
				line := fmt.Sprintf("%-14s %-26s %-40s %s", e.Phase, e.Advice, e.Target, e.Elapsed)
				if e.Failed() {
					line += "  error=" + e.Error
				}
				fmt.Fprintln(out, line)
			}
			if c, err := rt.Engine.Chain(args[0]); err == nil {
				fmt.Fprintln(out)
				fmt.Fprint(out, graph.GenerateMermaid(c, &graph.Overlay{Fired: rt.Trace.Trace()}))
			}
		}

		if invokeErr != nil {
			return invokeErr
		}
		return writeJSON(out, res)
	},
}

func init() {
	rootCmd.AddCommand(invokeCmd)
	invokeCmd.Flags().BoolP("trace", "t", false, "Print every interception event and the fired chain")
}
