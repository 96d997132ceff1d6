package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/examprep/config"
	"github.com/YuminosukeSato/examprep/dataset"
	"github.com/YuminosukeSato/examprep/pkg/errors"
	"github.com/YuminosukeSato/examprep/pkg/log"
	"github.com/YuminosukeSato/examprep/report"
	"github.com/YuminosukeSato/examprep/transformation"
)

type transformOptions struct {
	trainPath   string
	testPath    string
	artifactDir string
	outDir      string
	plotDir     string
	bins        int
}

func newTransformCmd(root *rootOptions) *cobra.Command {
	opts := &transformOptions{}

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Fit the preprocessing plan on train data and transform train and test",
		Long: `The transform command fits the preprocessing plan on the training features only,
applies it to both tables with the target appended as the last column, and saves
the fitted plan. The plan path is printed on success.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger("cli")

			cfg := root.cfg
			if opts.artifactDir != "" {
				config.WithArtifactDir(opts.artifactDir)(&cfg)
			}

			dt, err := transformation.NewDataTransformation(cfg,
				transformation.WithLogger(root.logger("transformation")),
			)
			if err != nil {
				return err
			}
			res, err := dt.InitiateDataTransformation(cmd.Context(), opts.trainPath, opts.testPath)
			if err != nil {
				logger.Error("data transformation failed", err, log.ErrorKindKey, errors.KindOf(err))
				return err
			}

			if opts.outDir != "" {
				if err := dataset.WriteMatrixCSV(filepath.Join(opts.outDir, "train_arr.csv"), res.FeatureNames, res.Train); err != nil {
					return err
				}
				if err := dataset.WriteMatrixCSV(filepath.Join(opts.outDir, "test_arr.csv"), res.FeatureNames, res.Test); err != nil {
					return err
				}
				logger.Info("wrote transformed arrays", "out_dir", opts.outDir)
			}

			if opts.plotDir != "" {
				paths, err := report.WriteHistograms(res.Train, res.FeatureNames[:len(cfg.NumericalColumns)], opts.plotDir, opts.bins)
				if err != nil {
					return err
				}
				logger.Info("wrote histograms", "plots", paths)
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.PreprocessorPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.trainPath, "train", "", "training CSV path")
	cmd.Flags().StringVar(&opts.testPath, "test", "", "test CSV path")
	cmd.Flags().StringVar(&opts.artifactDir, "artifact-dir", "", "directory for the fitted plan (overrides the configuration)")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "write train_arr.csv and test_arr.csv to this directory")
	cmd.Flags().StringVar(&opts.plotDir, "plot-dir", "", "write histograms of the transformed numeric features to this directory")
	cmd.Flags().IntVar(&opts.bins, "bins", report.DefaultBins, "histogram bin count")
	_ = cmd.MarkFlagRequired("train")
	_ = cmd.MarkFlagRequired("test")

	return cmd
}
