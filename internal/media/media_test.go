package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 7 {
		img.Set(x, height/2, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocalStorageSaveAndOpen(t *testing.T) {
	storage := NewLocalStorage(t.TempDir(), "/media/")

	name, err := storage.Save("pasta.jpg", strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, "pasta.jpg", name)

	exists, err := storage.Exists(name)
	require.NoError(t, err)
	assert.True(t, exists)

	file, err := storage.Open(name)
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	assert.Equal(t, "/media/pasta.jpg", storage.URL(name))
	assert.Equal(t, "", storage.URL(""))
}

func TestLocalStorageAvoidsClashes(t *testing.T) {
	storage := NewLocalStorage(t.TempDir(), "/media/")

	first, err := storage.Save("pasta.jpg", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := storage.Save("pasta.jpg", strings.NewReader("two"))
	require.NoError(t, err)

	assert.Equal(t, "pasta.jpg", first)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "pasta_"))
	assert.True(t, strings.HasSuffix(second, ".jpg"))
}

func TestLocalStorageDelete(t *testing.T) {
	storage := NewLocalStorage(t.TempDir(), "/media/")
	name, err := storage.Save("soup.png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, storage.Delete(name))
	exists, err := storage.Exists(name)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, storage.Delete(name))
}

func TestLocalStorageRejectsEmptyNames(t *testing.T) {
	storage := NewLocalStorage(t.TempDir(), "/media/")

	_, err := storage.Save("..", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestValidName(t *testing.T) {
	tests := map[string]string{
		"pasta.jpg":        "pasta.jpg",
		"my dish.png":      "my_dish.png",
		"../../etc/passwd": "passwd",
		"weird$name!.jpeg": "weirdname.jpeg",
		".hidden.jpg":      "hidden.jpg",
		"":                 "",
	}
	for input, want := range tests {
		assert.Equal(t, want, ValidName(input), input)
	}
}

func TestJPEGNormalizerFitsBoundingBox(t *testing.T) {
	normalizer := NewJPEGNormalizer(800, 85)

	out, err := normalizer.Normalize(bytes.NewReader(pngBytes(t, 1600, 1000)))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 500, img.Bounds().Dy())
}

func TestJPEGNormalizerKeepsSmallImages(t *testing.T) {
	normalizer := NewJPEGNormalizer(800, 85)

	out, err := normalizer.Normalize(bytes.NewReader(pngBytes(t, 300, 900)))
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 800)
	assert.Equal(t, 800, img.Bounds().Dy())

	small, err := normalizer.Normalize(bytes.NewReader(pngBytes(t, 120, 80)))
	require.NoError(t, err)
	img, err = imaging.Decode(bytes.NewReader(small))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 80), img.Bounds())
}

func TestJPEGNormalizerRejectsGarbage(t *testing.T) {
	_, err := NewJPEGNormalizer(800, 85).Normalize(strings.NewReader("not an image"))

	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestNewJPEGNormalizerDefaults(t *testing.T) {
	normalizer := NewJPEGNormalizer(0, 101)

	assert.Equal(t, DefaultMaxSize, normalizer.MaxSize)
	assert.Equal(t, DefaultQuality, normalizer.Quality)
}
