package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audithq/safety-audit/model"
)

// 1x1 PNG, the smallest payload the decoder accepts.
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func TestNormalizePhotoBareBase64(t *testing.T) {
	photo, err := NormalizePhoto(tinyPNG)
	require.NoError(t, err)
	assert.Equal(t, "image/png", photo.MIME)
	assert.Equal(t, 1, photo.Width)
	assert.Equal(t, 1, photo.Height)
	assert.NotEmpty(t, photo.Data)
}

func TestNormalizePhotoDataURI(t *testing.T) {
	photo, err := NormalizePhoto("data:image/png;base64," + tinyPNG)
	require.NoError(t, err)
	assert.Equal(t, "image/png", photo.MIME)
	assert.Equal(t, 1, photo.Width)
	assert.Equal(t, 1, photo.Height)
}

func TestNormalizePhotoRejectsGarbage(t *testing.T) {
	for _, payload := range []string{
		"",
		"not-valid-base64!!",
		"aGVsbG8gd29ybGQ=", // decodes, but no image magic
		"data:image/png,missing-semicolon",
	} {
		_, err := NormalizePhoto(payload)
		assert.ErrorIs(t, err, ErrUnknownImage, "payload %q", payload)
	}
}

func TestNormalizeResponsesDropsInvalidPhotos(t *testing.T) {
	responses := map[string]model.Response{
		"f1": {Photos: []string{tinyPNG, "garbage!!", ""}},
		"f2": {Photos: []string{tinyPNG}},
		"f3": {Value: "no photos here"},
	}

	photos, dropped := NormalizeResponses(responses)

	assert.Len(t, photos["f1"], 1)
	assert.Equal(t, 2, dropped["f1"])
	assert.Len(t, photos["f2"], 1)
	assert.Zero(t, dropped["f2"])
	assert.NotContains(t, photos, "f3")
}

func TestPhotoDataURIRoundTrip(t *testing.T) {
	photo, err := NormalizePhoto(tinyPNG)
	require.NoError(t, err)

	again, err := NormalizePhoto(photo.DataURI())
	require.NoError(t, err)
	assert.Equal(t, photo, again)
}
