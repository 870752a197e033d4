package commands

import (
	"errors"
	"fmt"
	"os"

	"qrzbuddy/cmd/qrzbuddy/globals"
	"qrzbuddy/internal/lookup"
	"qrzbuddy/internal/qrz"

	"github.com/spf13/cobra"
)

var errIncomplete = errors.New("lookup incomplete")

func init() {
	rootCmd.AddCommand(callsignCmd)
}

var callsignColumns = []column[qrz.Callsign]{
	{"Call", func(r qrz.Callsign) any { return r.Call }},
	{"Name", func(r qrz.Callsign) any { return joinName(r.Fname, r.Name) }},
	{"Class", func(r qrz.Callsign) any { return r.Class }},
	{"Country", func(r qrz.Callsign) any { return r.Country }},
	{"State", func(r qrz.Callsign) any { return r.State }},
	{"Grid", func(r qrz.Callsign) any { return r.Grid }},
	{"Lat", func(r qrz.Callsign) any { return r.Lat }},
	{"Lon", func(r qrz.Callsign) any { return r.Lon }},
	{"Email", func(r qrz.Callsign) any { return r.Email }},
	{"Expires", func(r qrz.Callsign) any { return r.Expdate }},
}

var callsignCmd = &cobra.Command{
	Use:   "callsign <callsign>...",
	Short: "Looks up one or more callsigns.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o := globals.Get(cmd.Context()).Orchestrator

		result := o.FetchCallsignRecords(cmd.Context(), lookup.NormalizeTerms(args))
		err := render(os.Stdout, format, callsignColumns, result.Records)
		if err != nil {
			return err
		}
		return batchOutcome(result.Unresolved, result.CredentialsNeeded)
	},
}

// batchOutcome turns the terms a batch never got to into the command's error.
func batchOutcome(unresolved []lookup.SearchTerm, credentialsNeeded bool) error {
	if len(unresolved) == 0 && !credentialsNeeded {
		return nil
	}
	if credentialsNeeded {
		return fmt.Errorf("%w: %w, %d term(s) not looked up", errIncomplete, lookup.ErrCredentialsNeeded, len(unresolved))
	}
	return fmt.Errorf("%w: %d term(s) not looked up", errIncomplete, len(unresolved))
}
