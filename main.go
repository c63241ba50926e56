package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "shadebake",
		Short:         "Bake material graphs into per-element color data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCheckCmd(), newBakeCmd())
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <source.lisp>",
		Short: "Parse and validate a material without baking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			result := NewApp().Evaluate(string(source))
			for _, w := range result.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			if len(result.Errors) > 0 {
				for _, e := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", EvalErrorString(e))
				}
				return fmt.Errorf("%s: %d error(s)", args[0], len(result.Errors))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d nodes\n", args[0], result.NodeCount)
			return nil
		},
	}
}

func newBakeCmd() *cobra.Command {
	var meshPath, outPath string
	var scalarChannels []string

	cmd := &cobra.Command{
		Use:   "bake <source.lisp>",
		Short: "Evaluate a material and bake its output channels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			mesh := MeshInput{Elements: 1}
			if meshPath != "" {
				raw, err := os.ReadFile(meshPath)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &mesh); err != nil {
					return fmt.Errorf("parsing %s: %w", meshPath, err)
				}
			}

			result := NewApp().Bake(string(source), mesh, scalarChannels)
			for _, w := range result.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			for _, e := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", EvalErrorString(e))
			}

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			encoded = append(encoded, '\n')
			if outPath != "" {
				if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
					return err
				}
			} else {
				if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
					return err
				}
			}

			if len(result.Errors) > 0 {
				return fmt.Errorf("%s: %d error(s)", args[0], len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&meshPath, "mesh", "m", "", "JSON file with per-element mesh data")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the result JSON to a file instead of stdout")
	cmd.Flags().StringSliceVar(&scalarChannels, "scalar", nil, "bake extra scalar channels named after reroute nodes")
	return cmd
}

// EvalErrorString renders an eval error with its location when known.
func EvalErrorString(e EvalErrorData) string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}
