package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
)

// stderrReporter prints batch errors after the batch's output.
type stderrReporter struct {
	out io.Writer
}

func newStderrReporter() stderrReporter {
	return stderrReporter{out: os.Stderr}
}

func (r stderrReporter) DisplayError(report string) {
	fmt.Fprintln(r.out, text.FgRed.Sprint("some lookups failed:"))
	fmt.Fprintln(r.out, report)
}

func (r stderrReporter) CredentialsNeeded() {
	fmt.Fprintln(r.out, text.FgYellow.Sprint("QRZ credentials are needed, run `qrzbuddy login` or set QRZ_USERNAME and QRZ_PASSWORD."))
}
