package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/rescue-router/internal/geo"
	"github.com/sells-group/rescue-router/internal/model"
)

var (
	pointsCenter  string
	pointsAddress string
	pointsCity    string
	pointsRadius  float64
	pointsOutput  string
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Compute the eight directional points around a center",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("points"); err != nil {
			return err
		}
		radius := pointsRadius
		if radius <= 0 {
			radius = cfg.Directions.RadiusKM
		}

		if pointsCenter != "" {
			center, err := model.ParseGeoPoint(pointsCenter)
			if err != nil {
				return err
			}
			return writeOutput(pointsOutput, geo.AroundPoints(center, radius))
		}

		if pointsAddress == "" {
			return eris.New("points: --center or --address is required")
		}
		if cfg.AMap.Key == "" {
			return eris.New("points: amap.key is required to geocode --address")
		}

		env, err := initPlanner(cmd.Context(), "survey")
		if err != nil {
			return err
		}
		defer env.Close()

		center, err := env.Planner.Locate(cmd.Context(), pointsAddress, pointsCity)
		if err != nil {
			return err
		}
		return writeOutput(pointsOutput, geo.AroundPoints(center, radius))
	},
}

func init() {
	pointsCmd.Flags().StringVar(&pointsCenter, "center", "", "center as lon,lat")
	pointsCmd.Flags().StringVar(&pointsAddress, "address", "", "address to geocode as the center")
	pointsCmd.Flags().StringVar(&pointsCity, "city", "", "city that narrows geocoding")
	pointsCmd.Flags().Float64Var(&pointsRadius, "radius-km", 0, "distance to each point (default from config)")
	pointsCmd.Flags().StringVarP(&pointsOutput, "output", "o", "", "write JSON to this file instead of stdout")
	rootCmd.AddCommand(pointsCmd)
}
