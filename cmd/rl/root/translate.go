package root

import (
	"github.com/spf13/cobra"

	"github.com/avivsinai/rustlator/internal/cobraext"
	"github.com/avivsinai/rustlator/internal/intent"
)

func runTranslate(cmd *cobra.Command, app *cobraext.App, in intent.Intent) error {
	client, err := newClient(app, in.APIURL)
	if err != nil {
		return err
	}

	translated, err := client.Translate(cmd.Context(), in.Text, in.From, in.To)
	if err != nil {
		return err
	}

	if app.Printer.Structured() {
		return app.Printer.Print(map[string]any{
			"input":      in.Text,
			"from":       in.From,
			"to":         in.To,
			"translated": translated,
		})
	}
	return app.Printer.Print(translated)
}
