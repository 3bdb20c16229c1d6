package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/raysh454/tempusfetch/internal/app"
	"github.com/raysh454/tempusfetch/internal/extract"
	"github.com/raysh454/tempusfetch/internal/persist"
	"github.com/raysh454/tempusfetch/internal/session"
	"github.com/raysh454/tempusfetch/internal/tempus"
)

func reportSession(w io.Writer, s *session.Session) {
	if s == nil {
		return
	}
	fmt.Fprintf(w, "XSRF Token: %s\n", session.Preview(s.Tokens.CSRFToken))
	fmt.Fprintf(w, "Session ID: %s\n", session.Preview(s.Tokens.SessionID))
}

func reportSuccess(w io.Writer, rep *app.Report) {
	reportSession(w, rep.Session)
	fmt.Fprintf(w, "Sending %s request to %s...\n", rep.Job, rep.URL)

	if x := rep.Extraction; x != nil && !x.Found() {
		reportShapeMiss(w, x)
		return
	}
	fmt.Fprintln(w, "Success!")
	fmt.Fprintf(w, "Results saved to %s\n", rep.OutputPath)

	if x := rep.Extraction; x != nil {
		fmt.Fprintf(w, "Found %d records.\n", len(x.Records))
		if first := rep.FirstRecord(); first != nil {
			fmt.Fprintf(w, "First record preview: %s\n", persist.Preview(first))
		}
	}
	if rep.Verified >= 0 {
		fmt.Fprintf(w, "Verification successful. Read %d records from file.\n", rep.Verified)
	}
	if rep.Capture != nil {
		fmt.Fprintf(w, "Archived as %s\n", rep.Capture.ID)
	}
}

func reportShapeMiss(w io.Writer, x *extract.Extraction) {
	fmt.Fprintln(w, "Could not automatically find the results list in props.")
	switch x.Kind {
	case extract.KindNoProps:
		fmt.Fprintf(w, "Response keys: %s\n", strings.Join(x.Keys, ", "))
		fmt.Fprintln(w, "Full response:")
		writeDump(w, x.Envelope)
	default:
		fmt.Fprintf(w, "Props keys: %s\n", strings.Join(x.PropKeys, ", "))
		fmt.Fprintln(w, "Props content:")
		writeDump(w, x.Props)
	}
}

func writeDump(w io.Writer, raw []byte) {
	out, err := persist.Format(raw)
	if err != nil {
		out = raw
	}
	fmt.Fprintf(w, "%s\n", out)
}

// reportFailure prints the human-readable diagnosis for a failed run.
func reportFailure(w io.Writer, rep *app.Report, err error) {
	if rep != nil {
		reportSession(w, rep.Session)
	}

	var (
		serr *tempus.StatusError
		derr *tempus.DecodeError
	)
	switch {
	case errors.Is(err, session.ErrTokensNotFound):
		fmt.Fprintln(w, "Failed to find tokens. The site might be blocking or structure changed.")
	case errors.As(err, &serr):
		fmt.Fprintf(w, "Request failed with status %d\n", serr.Code)
		if serr.Location != "" {
			fmt.Fprintf(w, "Server asked for a reload of %s\n", serr.Location)
		}
		fmt.Fprintf(w, "Response: %s\n", serr.Body)
	case errors.As(err, &derr):
		fmt.Fprintln(w, "Failed to decode JSON response.")
		fmt.Fprintf(w, "Raw response: %s\n", derr.Raw)
	default:
		fmt.Fprintf(w, "Run failed: %v\n", err)
	}
}
