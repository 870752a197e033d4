package commands

import (
	"fmt"
	"os"
	"strconv"

	"qrzbuddy/internal/maidenhead"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(gridCmd)
}

type gridPoint struct {
	Grid string  `yaml:"grid"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

var gridColumns = []column[gridPoint]{
	{"Grid", func(p gridPoint) any { return p.Grid }},
	{"Lat", func(p gridPoint) any { return strconv.FormatFloat(p.Lat, 'f', 6, 64) }},
	{"Lon", func(p gridPoint) any { return strconv.FormatFloat(p.Lon, 'f', 6, 64) }},
}

func parseGridArgs(args []string) (gridPoint, error) {
	if len(args) == 1 {
		lat, lon, err := maidenhead.ToLatLon(args[0])
		if err != nil {
			return gridPoint{}, err
		}
		return gridPoint{Grid: args[0], Lat: lat, Lon: lon}, nil
	}

	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return gridPoint{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return gridPoint{}, fmt.Errorf("longitude: %w", err)
	}
	return gridPoint{Grid: maidenhead.FromLatLon(lat, lon), Lat: lat, Lon: lon}, nil
}

var gridCmd = &cobra.Command{
	Use:   "grid <locator> | grid <lat> <lon>",
	Short: "Converts between Maidenhead locators and coordinates.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		point, err := parseGridArgs(args)
		if err != nil {
			return err
		}
		return render(os.Stdout, format, gridColumns, []gridPoint{point})
	},
}
