package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avivsinai/rustlator/internal/cobraext"
	"github.com/avivsinai/rustlator/internal/intent"
	"github.com/avivsinai/rustlator/internal/libre"
)

// runStatus prints the resolved settings and probes the service. A failed
// probe is reported as output; the command still succeeds.
func runStatus(cmd *cobra.Command, app *cobraext.App, in intent.Intent) error {
	var probe libre.ProbeResult
	if client, err := newClient(app, in.APIURL); err != nil {
		probe.Err = err
	} else {
		probe = client.Probe(cmd.Context())
	}

	if app.Printer.Structured() {
		payload := map[string]any{
			"from":      in.From,
			"to":        in.To,
			"api_url":   in.APIURL,
			"reachable": probe.Reachable,
		}
		if probe.Reachable {
			payload["status_code"] = probe.StatusCode
			payload["status"] = probe.Status
		}
		if probe.Err != nil {
			payload["error"] = probe.Err.Error()
		}
		return app.Printer.Print(payload)
	}

	return app.Printer.Lines(
		"Current language settings:",
		"From: "+in.From,
		"To: "+in.To,
		"API URL: "+in.APIURL,
		probeLine(probe),
	)
}

func probeLine(probe libre.ProbeResult) string {
	switch {
	case probe.OK():
		return "API URL is accessible."
	case probe.Reachable:
		return fmt.Sprintf("API URL responded with status: %s", probe.Status)
	default:
		return fmt.Sprintf("Failed to reach API URL: %v", probe.Err)
	}
}
