package imageinput

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestValidate(t *testing.T) {
	mime, err := Validate(pngHeader, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = Validate(nil, 0)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = Validate([]byte("just some text, definitely not a picture"), 0)
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = Validate(pngHeader, 4)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestRead_StopsAtLimit(t *testing.T) {
	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)

	_, _, err := Read(bytes.NewReader(big), 32)
	assert.ErrorIs(t, err, ErrTooLarge)

	data, mime, err := Read(bytes.NewReader(big), 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Len(t, data, len(big))
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AQID", DataURL("image/png", []byte{1, 2, 3}))
}
