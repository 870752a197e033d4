package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"qrzbuddy/cmd/qrzbuddy/globals"
	"qrzbuddy/internal/lookup"

	"github.com/PuerkitoBio/goquery"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var bioText bool

func init() {
	bioCmd.Flags().BoolVar(&bioText, "text", false, "Strip the bio markup and print plain text.")
	rootCmd.AddCommand(bioCmd)
}

// plainText extracts the readable text of a bio, one paragraph per line.
func plainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()

	var lines []string
	doc.Find("body").Find("p, h1, h2, h3, h4, h5, h6, li, td, pre").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li, td").Length() > 0 {
			return
		}
		line := strings.Join(strings.Fields(s.Text()), " ")
		if line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		line := strings.Join(strings.Fields(doc.Text()), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func writeBio(w io.Writer, term lookup.SearchTerm, bio string, asText bool) error {
	if asText {
		var err error
		bio, err = plainText(bio)
		if err != nil {
			return fmt.Errorf("%s: %w", term, err)
		}
	}
	fmt.Fprintln(w, text.Bold.Sprintf("== %s ==", term))
	fmt.Fprintln(w, bio)
	return nil
}

var bioCmd = &cobra.Command{
	Use:   "bio <callsign>... [--text]",
	Short: "Prints the QRZ bio of one or more callsigns.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o := globals.Get(cmd.Context()).Orchestrator

		result := o.FetchBios(cmd.Context(), lookup.NormalizeTerms(args))
		for i, bio := range result.Records {
			err := writeBio(os.Stdout, result.Resolved[i], bio, bioText)
			if err != nil {
				return err
			}
		}
		return batchOutcome(result.Unresolved, result.CredentialsNeeded)
	},
}
