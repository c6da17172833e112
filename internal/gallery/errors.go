package gallery

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeMarkerMalformed = "GALLERY_MARKER_MALFORMED"
	codeNotFound        = "GALLERY_NOT_FOUND"
	codeIndexInvalid    = "GALLERY_INDEX_INVALID"
)

var (
	// ErrMalformedMarker is returned when the marker syntax is present but the
	// gallery name is missing.
	ErrMalformedMarker = errors.New("gallery: malformed marker")
	// ErrGalleryNotFound is returned when the gallery index file does not exist
	// or cannot be opened.
	ErrGalleryNotFound = errors.New("gallery: index not found")
	// ErrGalleryIndexFormat is returned when the index file has no embedded
	// image array, the array is not valid JSON or an entry misses a field.
	ErrGalleryIndexFormat = errors.New("gallery: invalid index format")
	// ErrSiteRequired is returned when Expand is called without a site context.
	ErrSiteRequired = errors.New("gallery: site context is required")
)

func malformedMarkerError(raw string) error {
	return goerrors.Wrap(ErrMalformedMarker, goerrors.CategoryBadInput, "gallery marker has no gallery name").
		WithTextCode(codeMarkerMalformed).
		WithMetadata(map[string]any{"marker": raw})
}

func notFoundError(gallery, file string, cause error) error {
	meta := map[string]any{}
	if gallery != "" {
		meta["gallery"] = gallery
	}
	if file != "" {
		meta["index_file"] = file
	}
	if cause != nil {
		meta["cause"] = cause.Error()
	}
	return goerrors.Wrap(ErrGalleryNotFound, goerrors.CategoryNotFound, "gallery index file could not be opened").
		WithTextCode(codeNotFound).
		WithMetadata(meta)
}

func indexFormatError(file, reason string) error {
	return goerrors.Wrap(ErrGalleryIndexFormat, goerrors.CategoryValidation, "gallery index: "+reason).
		WithTextCode(codeIndexInvalid).
		WithMetadata(map[string]any{"index_file": file})
}

// IsMalformedMarker reports whether err is a malformed marker error.
func IsMalformedMarker(err error) bool {
	return errors.Is(err, ErrMalformedMarker)
}

// IsNotFound reports whether err signals a missing gallery index.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGalleryNotFound)
}

// IsIndexFormat reports whether err signals an unreadable gallery index.
func IsIndexFormat(err error) bool {
	return errors.Is(err, ErrGalleryIndexFormat)
}
