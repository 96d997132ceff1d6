package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/examprep/dataset"
	"github.com/YuminosukeSato/examprep/pkg/errors"
	"github.com/YuminosukeSato/examprep/pkg/log"
	"github.com/YuminosukeSato/examprep/transformation"
)

type applyOptions struct {
	planPath   string
	inputPath  string
	outputPath string
}

func newApplyCmd(root *rootOptions) *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Transform a CSV with a saved preprocessing plan",
		Long: `The apply command loads a fitted plan and transforms the input CSV with it.
The target column is dropped when present. Output is CSV, to --output or stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger("cli").With(log.PhaseKey, log.PhaseInference)

			plan, err := transformation.LoadPlan(opts.planPath)
			if err != nil {
				logger.Error("load plan failed", err, log.ErrorKindKey, errors.KindOf(err))
				return err
			}
			logger.Info("loaded preprocessing object",
				log.OperationKey, log.OperationLoad,
				log.ArtifactPathKey, opts.planPath,
			)

			table, err := dataset.CSVLoader{}.Load(opts.inputPath)
			if err != nil {
				return errors.WrapOperation("cmd.apply", err, "input", opts.inputPath)
			}
			m, err := transformation.ApplyPlan(plan, table, root.cfg.TargetColumn)
			if err != nil {
				logger.Error("apply plan failed", err, log.ErrorKindKey, errors.KindOf(err))
				return err
			}
			rows, _ := m.Dims()
			logger.Info("applied preprocessing object",
				log.OperationKey, log.OperationTransform,
				log.SamplesKey, rows,
				log.SourcePathKey, opts.inputPath,
			)

			if opts.outputPath == "" {
				return dataset.EncodeMatrixCSV(cmd.OutOrStdout(), plan.OutputNames(), m)
			}
			return dataset.WriteMatrixCSV(opts.outputPath, plan.OutputNames(), m)
		},
	}

	cmd.Flags().StringVar(&opts.planPath, "plan", "", "path of the saved preprocessing plan")
	cmd.Flags().StringVar(&opts.inputPath, "input", "", "CSV to transform")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "output CSV path (default stdout)")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
