package cards

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcomeCardRendersPNG(t *testing.T) {
	buf, err := WelcomeCard("khaby", "Creator Hub")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, 640, bounds.Dx())
	assert.Equal(t, 320, bounds.Dy())
}
