package root

import (
	"fmt"

	"github.com/avivsinai/rustlator/internal/cobraext"
	"github.com/avivsinai/rustlator/internal/intent"
)

func renderAPIUpdated(app *cobraext.App, in intent.Intent) error {
	if app.Printer.Structured() {
		return app.Printer.Print(map[string]any{"api_url": in.APIURL})
	}
	return app.Printer.Print(fmt.Sprintf("API URL updated to: %s", in.APIURL))
}

func renderLanguagesUpdated(app *cobraext.App, in intent.Intent) error {
	if app.Printer.Structured() {
		payload := map[string]any{}
		if in.SetFrom != nil {
			payload["from"] = *in.SetFrom
		}
		if in.SetTo != nil {
			payload["to"] = *in.SetTo
		}
		return app.Printer.Print(payload)
	}
	return app.Printer.Print("Language settings updated.")
}
