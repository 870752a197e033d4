package commands

import (
	"os"

	"qrzbuddy/cmd/qrzbuddy/globals"
	"qrzbuddy/internal/lookup"
	"qrzbuddy/internal/qrz"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dxccCmd)
}

var dxccColumns = []column[qrz.DXCC]{
	{"DXCC", func(r qrz.DXCC) any { return r.Dxcc }},
	{"Name", func(r qrz.DXCC) any { return r.Name }},
	{"Prefix", func(r qrz.DXCC) any { return r.Cc }},
	{"Continent", func(r qrz.DXCC) any { return r.Continent }},
	{"ITU", func(r qrz.DXCC) any { return r.Ituzone }},
	{"CQ", func(r qrz.DXCC) any { return r.Cqzone }},
	{"UTC offset", func(r qrz.DXCC) any { return r.Timezone }},
	{"Lat", func(r qrz.DXCC) any { return r.Lat }},
	{"Lon", func(r qrz.DXCC) any { return r.Lon }},
}

var dxccCmd = &cobra.Command{
	Use:   "dxcc <entity|callsign>...",
	Short: "Looks up DXCC entities by entity number or callsign.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o := globals.Get(cmd.Context()).Orchestrator

		result := o.FetchDXCCRecords(cmd.Context(), lookup.NormalizeTerms(args))
		err := render(os.Stdout, format, dxccColumns, result.Records)
		if err != nil {
			return err
		}
		return batchOutcome(result.Unresolved, result.CredentialsNeeded)
	},
}
