package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/examprep/transformation"
)

func newInspectCmd(root *rootOptions) *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the branches, stages and learned statistics of a saved plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := transformation.LoadPlan(planPath)
			if err != nil {
				root.logger("cli").Error("load plan failed", err)
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), plan.String())
			fmt.Fprintf(cmd.OutOrStdout(), "outputs: %v\n", plan.OutputNames())
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "path of the saved preprocessing plan")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}
