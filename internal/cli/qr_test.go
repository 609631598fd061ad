package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/boombuler/barcode/qr"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderQR_Geometry(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	code, err := qr.Encode("https://example.com/login?key=abc", qr.M, qr.Auto)
	require.NoError(t, err)
	size := code.Bounds().Dx()

	var buf bytes.Buffer
	renderQR(&buf, code)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, size+2*quietZone, "quiet zone rows above and below")
	for _, line := range lines {
		assert.Len(t, line, (size+2*quietZone)*2, "two columns per module")
	}
}

func TestRenderQR_UsesBothColors(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })

	code, err := qr.Encode("https://example.com", qr.M, qr.Auto)
	require.NoError(t, err)

	var buf bytes.Buffer
	renderQR(&buf, code)

	out := buf.String()
	assert.Contains(t, out, "\x1b[40m", "dark modules use a black background")
	assert.Contains(t, out, "\x1b[47m", "light modules use a white background")
}
