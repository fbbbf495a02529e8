package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	surveyAddress string
	surveyCity    string
	surveyOutput  string
)

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Survey the facilities around an address",
	Long:  "Searches every configured category group around the address, deduplicates the merged table and prints it with the address breakdown.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if surveyAddress == "" {
			return eris.New("survey: --address is required")
		}

		env, err := initPlanner(cmd.Context(), "survey")
		if err != nil {
			return err
		}
		defer env.Close()

		report := env.Planner.Survey(cmd.Context(), surveyAddress, surveyCity)
		if len(report.Errors) > 0 {
			zap.L().Warn("survey completed with errors", zap.Int("errors", len(report.Errors)))
		}
		return writeOutput(surveyOutput, report)
	},
}

func init() {
	surveyCmd.Flags().StringVar(&surveyAddress, "address", "", "address to survey")
	surveyCmd.Flags().StringVar(&surveyCity, "city", "", "city that narrows geocoding and search")
	surveyCmd.Flags().StringVarP(&surveyOutput, "output", "o", "", "write JSON to this file instead of stdout")
	rootCmd.AddCommand(surveyCmd)
}
