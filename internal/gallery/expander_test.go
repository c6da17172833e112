package gallery

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

func testSite() *PatternSite {
	return NewPatternSite(PatternSiteConfig{OutputFolder: filepath.Join("testdata", "output")})
}

type stubReader struct {
	images []interfaces.GalleryImage
	err    error
	files  []string
}

func (s *stubReader) ReadIndex(_ context.Context, file string) ([]interfaces.GalleryImage, error) {
	s.files = append(s.files, file)
	return s.images, s.err
}

type stubSite struct {
	path string
	err  error
}

func (s stubSite) Path(string, string) (string, error) { return s.path, s.err }
func (s stubSite) OutputFolder() string                { return "out" }

func TestExpandEndToEnd(t *testing.T) {
	marker, err := Match("See [:gallery: dog_pics]")
	require.NoError(t, err)

	fragment, err := NewExpander().Expand(context.Background(), *marker, testSite())
	require.NoError(t, err)
	require.Len(t, fragment.Cells, 3)

	assert.Equal(t, "dog_pics", fragment.Gallery)
	assert.Equal(t, Cell{Href: "/galleries/dog_pics/1.jpg", Thumb: "/galleries/dog_pics/t1.jpg", Title: "Rex; sleeping"}, fragment.Cells[0])
	assert.Equal(t, "/galleries/dog_pics/a/b.jpg", fragment.Cells[1].Href)
	assert.Equal(t, "/galleries/dog_pics/a/tb.jpg", fragment.Cells[1].Thumb)
	assert.Equal(t, "/galleries/dog_pics/3.jpg", fragment.Cells[2].Href)

	out, err := fragment.HTML()
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, `class="col-xs-6 col-md-3"`))
	assert.True(t, strings.HasPrefix(out, `<div id="gallery-container"><div class="row">`))
}

func TestExpandReadsResolvedIndexFile(t *testing.T) {
	reader := &stubReader{images: []interfaces.GalleryImage{{URL: "x.jpg", URLThumb: "tx.jpg"}}}
	expander := NewExpander(WithIndexReader(reader))

	fragment, err := expander.Expand(context.Background(), Marker{Name: "cats"}, stubSite{path: "albums/cats/index.html"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("out", "albums", "cats", "index.html")}, reader.files)
	assert.Equal(t, "/albums/cats/x.jpg", fragment.Cells[0].Href)
}

func TestExpandPreservesOrder(t *testing.T) {
	images := make([]interfaces.GalleryImage, 0, 6)
	for _, name := range []string{"f", "e", "d", "c", "b", "a"} {
		images = append(images, interfaces.GalleryImage{URL: name + ".jpg", URLThumb: "t" + name + ".jpg"})
	}
	expander := NewExpander(WithIndexReader(&stubReader{images: images}))

	fragment, err := expander.Expand(context.Background(), Marker{Name: "g"}, stubSite{path: "g/index.html"})
	require.NoError(t, err)
	require.Len(t, fragment.Cells, len(images))
	for i, image := range images {
		assert.Equal(t, "/g/"+image.URL, fragment.Cells[i].Href)
	}
}

func TestExpandErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewExpander().Expand(ctx, Marker{Raw: "[:gallery: ]"}, testSite())
	assert.True(t, IsMalformedMarker(err))

	_, err = NewExpander().Expand(ctx, Marker{Name: "x"}, nil)
	assert.ErrorIs(t, err, ErrSiteRequired)

	_, err = NewExpander().Expand(ctx, Marker{Name: "missing"}, testSite())
	assert.True(t, IsNotFound(err))

	_, err = NewExpander().Expand(ctx, Marker{Name: "noscript"}, testSite())
	assert.True(t, IsIndexFormat(err))

	_, err = NewExpander().Expand(ctx, Marker{Name: "broken"}, testSite())
	assert.True(t, IsIndexFormat(err))

	_, err = NewExpander().Expand(ctx, Marker{Name: "x"}, stubSite{err: errors.New("no route")})
	assert.True(t, IsNotFound(err))
}

func TestExpandEmptyGalleryPolicy(t *testing.T) {
	ctx := context.Background()

	fragment, err := NewExpander().Expand(ctx, Marker{Name: "empty"}, testSite())
	require.NoError(t, err)
	assert.Empty(t, fragment.Cells)

	_, err = NewExpander(WithEmptyGalleryPolicy(EmptyGalleryError)).Expand(ctx, Marker{Name: "empty"}, testSite())
	assert.True(t, IsIndexFormat(err))
}

func TestParseEmptyGalleryPolicy(t *testing.T) {
	assert.Equal(t, EmptyGalleryError, ParseEmptyGalleryPolicy(" Error "))
	assert.Equal(t, EmptyGalleryRender, ParseEmptyGalleryPolicy("render"))
	assert.Equal(t, EmptyGalleryRender, ParseEmptyGalleryPolicy("whatever"))
}

func TestExpandText(t *testing.T) {
	out, err := NewExpander().ExpandText(context.Background(), "<p>Dogs: [:gallery: dog_pics] done</p>", testSite())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<p>Dogs: <div id=\"gallery-container\">"))
	assert.True(t, strings.HasSuffix(out, "</div></div> done</p>"))
	assert.NotContains(t, out, "[:gallery:")
	assert.Contains(t, out, `href="/galleries/dog_pics/a/b.jpg"`)
}

func TestExpandTextPassThroughAndAbort(t *testing.T) {
	expander := NewExpander()

	out, err := expander.ExpandText(context.Background(), "no markers", testSite())
	require.NoError(t, err)
	assert.Equal(t, "no markers", out)

	_, err = expander.ExpandText(context.Background(), "[:gallery: dog_pics] [:gallery: missing]", testSite())
	assert.True(t, IsNotFound(err))
}

func TestRootedURL(t *testing.T) {
	assert.Equal(t, "/galleries/dogs/a/b.jpg", RootedURL("galleries/dogs", "a/b.jpg"))
	assert.Equal(t, "/galleries/dogs/x.jpg", RootedURL("galleries/dogs", "/x.jpg"))
	assert.Equal(t, "/x.jpg", RootedURL(".", "x.jpg"))
}
