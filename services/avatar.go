package services

import (
	"bytes"
	"fmt"
	"strings"

	"clearance/portal/forms"

	"github.com/disintegration/imaging"
)

// NormalizeAvatar downscales an image upload to fit within maxSide x maxSide,
// keeping its format. Images already small enough are returned unchanged.
func NormalizeAvatar(u forms.Upload, maxSide int) (forms.Upload, error) {
	img, err := imaging.Decode(bytes.NewReader(u.Data), imaging.AutoOrientation(true))
	if err != nil {
		return u, fmt.Errorf("File %s is not a readable image", u.Filename)
	}

	b := img.Bounds()
	if b.Dx() <= maxSide && b.Dy() <= maxSide {
		return u, nil
	}

	format, err := imaging.FormatFromFilename(u.Filename)
	if err != nil {
		format = imaging.JPEG
	}

	var buf bytes.Buffer
	resized := imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return u, fmt.Errorf("failed to encode avatar: %w", err)
	}

	return forms.Upload{Filename: u.Filename, ContentType: u.ContentType, Data: buf.Bytes()}, nil
}

func isImage(u forms.Upload) bool {
	if strings.HasPrefix(u.ContentType, "image/") {
		return true
	}
	_, err := imaging.FormatFromFilename(u.Filename)
	return err == nil
}

// normalizeFiles downscales every image attached to a field
func normalizeFiles(d *forms.Draft, name string, maxSide int) error {
	files := d.Files(name)
	if len(files) == 0 {
		return nil
	}

	out := make([]forms.Upload, 0, len(files))
	changed := false
	for _, f := range files {
		if !isImage(f) {
			out = append(out, f)
			continue
		}
		n, err := NormalizeAvatar(f, maxSide)
		if err != nil {
			return err
		}
		changed = changed || len(n.Data) != len(f.Data)
		out = append(out, n)
	}
	if !changed {
		return nil
	}

	for range files {
		d.Remove(name, 0)
	}
	d.Attach(name, out...)
	return nil
}
