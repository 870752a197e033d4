package commands

import (
	"context"
	"os"
	"time"

	"qrzbuddy/cmd/qrzbuddy/globals"
	"qrzbuddy/internal/components/telemetry"
	"qrzbuddy/internal/js8call"
	"qrzbuddy/internal/maidenhead"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(stationCmd)
}

type station struct {
	Source   string  `yaml:"source"`
	Callsign string  `yaml:"callsign"`
	Grid     string  `yaml:"grid"`
	Lat      float64 `yaml:"lat,omitempty"`
	Lon      float64 `yaml:"lon,omitempty"`
}

var stationColumns = []column[station]{
	{"Source", func(s station) any { return s.Source }},
	{"Callsign", func(s station) any { return s.Callsign }},
	{"Grid", func(s station) any { return s.Grid }},
	{"Lat", func(s station) any { return s.Lat }},
	{"Lon", func(s station) any { return s.Lon }},
}

func stationFromJs8Call(ctx context.Context, tel telemetry.API) (station, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := js8call.Dial(ctx, config.Js8Call.Address, tel)
	if err != nil {
		return station{}, err
	}
	defer client.Close()

	callsign, err := client.StationCallsign(ctx)
	if err != nil {
		return station{}, err
	}
	grid, err := client.StationGrid(ctx)
	if err != nil {
		return station{}, err
	}
	return station{Source: "js8call", Callsign: callsign, Grid: grid}, nil
}

var stationCmd = &cobra.Command{
	Use:   "station",
	Short: "Shows this station's callsign and grid, read from JS8Call when it is enabled.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := station{
			Source:   "config",
			Callsign: config.Station.Callsign,
			Grid:     config.Station.Grid,
		}
		if config.Js8Call.Enabled {
			var err error
			s, err = stationFromJs8Call(cmd.Context(), globals.Get(cmd.Context()).Tel)
			if err != nil {
				return err
			}
		}

		if len(s.Grid) >= 6 {
			lat, lon, err := maidenhead.ToLatLon(s.Grid)
			if err == nil {
				s.Lat, s.Lon = lat, lon
			}
		}

		return render(os.Stdout, format, stationColumns, []station{s})
	},
}
