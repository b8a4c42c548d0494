package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufferPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Printer{Out: &buf, Err: &buf}, &buf
}

func TestPrintHumanString(t *testing.T) {
	p, buf := newBufferPrinter()
	require.NoError(t, p.Print("hei"))
	require.Equal(t, "hei\n", buf.String())
}

func TestPrintHumanFallsBackToJSON(t *testing.T) {
	p, buf := newBufferPrinter()
	require.NoError(t, p.Print(map[string]bool{"changed": false}))
	require.Equal(t, "{\n  \"changed\": false\n}\n", buf.String())
}

func TestPrintJSON(t *testing.T) {
	p, buf := newBufferPrinter()
	p.JSON = true
	require.NoError(t, p.Print(map[string]string{"translated": "<hei>"}))
	require.Equal(t, "{\n  \"translated\": \"<hei>\"\n}\n", buf.String())
}

func TestPrintYAML(t *testing.T) {
	p, buf := newBufferPrinter()
	p.YAML = true
	require.True(t, p.Structured())
	require.NoError(t, p.Print(map[string]any{"from": "en", "to": "fi"}))
	require.Equal(t, "from: en\nto: fi\n", buf.String())
}

func TestQuietSuppressesOutputButNotErrors(t *testing.T) {
	p, buf := newBufferPrinter()
	p.Quiet = true
	require.NoError(t, p.Print("hidden"))
	require.NoError(t, p.Lines("hidden"))
	p.Error("boom: %d", 1)
	require.Equal(t, "boom: 1\n", buf.String())
}
