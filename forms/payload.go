package forms

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Payload is an encoded multipart/form-data body
type Payload struct {
	body        []byte
	contentType string
}

// Reader returns a fresh reader over the body
func (p *Payload) Reader() io.Reader {
	return bytes.NewReader(p.body)
}

// ContentType includes the multipart boundary
func (p *Payload) ContentType() string {
	return p.contentType
}

// Len is the encoded size in bytes
func (p *Payload) Len() int {
	return len(p.body)
}

// Payload encodes the draft. Every declared non-file field is written as a
// plain entry. A multiple file field repeats its name once per file; a
// single file field writes its first file only.
func (d *Draft) Payload() (*Payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range d.fields {
		if err := w.WriteField(f.Name, d.values[f.Name]); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", f.Name, err)
		}
	}

	for _, ff := range d.fileFields {
		files := d.files[ff.Name]
		if !ff.Multiple && len(files) > 1 {
			files = files[:1]
		}
		for _, u := range files {
			part, err := w.CreatePart(fileHeader(ff.Name, u))
			if err != nil {
				return nil, fmt.Errorf("failed to create part for %s: %w", ff.Name, err)
			}
			if _, err := part.Write(u.Data); err != nil {
				return nil, fmt.Errorf("failed to write file %s: %w", u.Filename, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return &Payload{body: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func fileHeader(field string, u Upload) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(u.Filename)))

	contentType := u.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return h
}
