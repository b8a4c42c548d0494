package root

import (
	"github.com/avivsinai/rustlator/internal/cobraext"
	"github.com/avivsinai/rustlator/internal/libre"
)

func newClient(app *cobraext.App, apiURL string) (*libre.Client, error) {
	return libre.NewClient(apiURL,
		libre.WithLogger(app.Logger),
		libre.WithUserAgent("rustlator/"+version),
	)
}
