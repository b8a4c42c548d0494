package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avivsinai/rustlator/internal/cobraext"
	"github.com/avivsinai/rustlator/internal/intent"
	"github.com/avivsinai/rustlator/internal/libre"
	"github.com/avivsinai/rustlator/internal/ui/picker"
)

func runList(cmd *cobra.Command, app *cobraext.App, in intent.Intent, pick bool) error {
	client, err := newClient(app, in.APIURL)
	if err != nil {
		return err
	}

	langs, err := client.Languages(cmd.Context())
	if err != nil {
		return err
	}

	if pick {
		return pickTarget(cmd, app, langs)
	}

	if app.Printer.Structured() {
		return app.Printer.Print(map[string]any{"languages": langs})
	}

	lines := make([]string, 0, len(langs)+1)
	lines = append(lines, "Available languages:")
	for _, l := range langs {
		lines = append(lines, formatLanguage(l))
	}
	return app.Printer.Lines(lines...)
}

func formatLanguage(l libre.Language) string {
	return fmt.Sprintf("%-10s - %s", l.Code, l.Name)
}

// pickTarget lets the user choose from langs and stores the choice as the
// target language, the same way --to would.
func pickTarget(cmd *cobra.Command, app *cobraext.App, langs []libre.Language) error {
	chosen, err := picker.Run(cmd.Context(), langs, app.Config.ResolvedTo(), cmd.ErrOrStderr())
	if err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			return renderUnchanged(app)
		}
		return err
	}

	app.Config.SetTo(chosen.Code)
	if err := app.Store.Save(app.Config); err != nil {
		return err
	}

	to := chosen.Code
	return renderLanguagesUpdated(app, intent.Intent{Kind: intent.UpdateLanguages, SetTo: &to})
}

func renderUnchanged(app *cobraext.App) error {
	if app.Printer.Structured() {
		return app.Printer.Print(map[string]any{"changed": false})
	}
	return app.Printer.Print("No change.")
}
