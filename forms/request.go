package forms

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"clearance/portal/models"
)

// maxMemory bounds the part of a multipart request held in memory
const maxMemory = 32 << 20

// FromRequest fills the draft from a submitted HTML form. Disabled fields
// keep their initial value; browsers do not send them. File inputs left
// empty are skipped. Size rejections are returned, not treated as errors.
func FromRequest(r *http.Request, d *Draft) ([]Rejection, error) {
	if r.MultipartForm == nil && r.PostForm == nil {
		var err error
		if len(d.fileFields) > 0 {
			err = r.ParseMultipartForm(maxMemory)
			if err == http.ErrNotMultipart {
				err = r.ParseForm()
			}
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse form: %w", err)
		}
	}

	for _, f := range d.fields {
		if f.Disabled {
			continue
		}
		if f.Type == models.FieldCheckbox {
			_, checked := r.PostForm[f.Name]
			d.Set(f.Name, fmt.Sprint(checked && r.PostForm.Get(f.Name) != "false"))
			continue
		}
		if values, ok := r.PostForm[f.Name]; ok && len(values) > 0 {
			d.Set(f.Name, values[0])
		}
	}

	if r.MultipartForm == nil {
		return nil, nil
	}

	var rejections []Rejection
	for _, ff := range d.fileFields {
		headers := r.MultipartForm.File[ff.Name]
		if len(headers) == 0 {
			continue
		}

		uploads := make([]Upload, 0, len(headers))
		for _, fh := range headers {
			u, err := readUpload(fh, ff.MaxBytes())
			if err != nil {
				return nil, err
			}
			if u.Filename == "" && len(u.Data) == 0 {
				continue
			}
			uploads = append(uploads, u)
		}
		rejections = append(rejections, d.Attach(ff.Name, uploads...)...)
	}

	return rejections, nil
}

// readUpload reads at most limit+1 bytes so oversize files are detected
// without holding them whole.
func readUpload(fh *multipart.FileHeader, limit int64) (Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return Upload{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}

	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
