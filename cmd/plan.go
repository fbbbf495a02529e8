package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/rescue-router/internal/model"
	"github.com/sells-group/rescue-router/internal/planner"
)

var (
	planAddress string
	planCity    string
	planAvoid   []string
	planFormat  string
	planOutput  string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan routes from the authoritative hospital in each direction",
	Long: "Finds the most authoritative hospital in each of eight directions around the address " +
		"and plans a driving route from each to the address, optionally avoiding regions.",
	Example: `  rescue-router plan --address 杭州电子科技大学 --city 杭州
  rescue-router plan --address 杭州电子科技大学 --avoid "西湖;之江;滨江" --format text`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if planAddress == "" {
			return eris.New("plan: --address is required")
		}
		if planFormat != "json" && planFormat != "text" {
			return eris.Errorf("plan: unknown format %q", planFormat)
		}

		env, err := initPlanner(cmd.Context(), "plan")
		if err != nil {
			return err
		}
		defer env.Close()

		plan := env.Planner.PlanRoutes(cmd.Context(), planAddress, planCity, parseAvoid(planAvoid))
		if planFormat == "text" {
			return writePlanText(os.Stdout, plan)
		}
		return writeOutput(planOutput, plan)
	},
}

// parseAvoid splits each region flag on ";" into place names.
func parseAvoid(flags []string) [][]string {
	var regions [][]string
	for _, f := range flags {
		var names []string
		for _, n := range strings.Split(f, ";") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		if len(names) > 0 {
			regions = append(regions, names)
		}
	}
	return regions
}

func writePlanText(w io.Writer, plan *model.Plan) error {
	for _, r := range plan.Routes {
		if _, err := fmt.Fprintf(w, "[%s] %s\n\n", r.Direction, r.Text()); err != nil {
			return err
		}
	}
	for _, dir := range model.DirectionLabels {
		if msg, ok := plan.Errors[dir]; ok {
			if _, err := fmt.Fprintf(w, "[%s] error: %s\n", dir, msg); err != nil {
				return err
			}
		}
	}
	if msg, ok := plan.Errors[planner.KeyGeocode]; ok {
		_, err := fmt.Fprintf(w, "no plan: %s\n", msg)
		return err
	}
	return nil
}

func init() {
	planCmd.Flags().StringVar(&planAddress, "address", "", "destination address at the center of the plan")
	planCmd.Flags().StringVar(&planCity, "city", "", "city that narrows geocoding")
	planCmd.Flags().StringArrayVar(&planAvoid, "avoid", nil, `region to avoid as ";"-separated place names (repeatable)`)
	planCmd.Flags().StringVar(&planFormat, "format", "json", "output format: json or text")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "write JSON to this file instead of stdout")
	rootCmd.AddCommand(planCmd)
}
