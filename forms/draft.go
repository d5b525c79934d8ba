package forms

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"clearance/portal/models"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// The stock "email" tag is RFC-strict; the portal accepts any single-@
	// address with a dotted domain.
	v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// Upload is one file chosen for a file field
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size is the file size in bytes
func (u Upload) Size() int64 {
	return int64(len(u.Data))
}

// Rejection is a file refused by Attach
type Rejection struct {
	Field    string
	Filename string
	Message  string
}

// Draft is the editable state of one form
type Draft struct {
	fields     []models.FormField
	fileFields []models.FileField
	values     map[string]string
	files      map[string][]Upload
	fileErrors map[string]string
}

// New builds a draft. Initial values are stringified; fields missing from
// initial start empty, checkboxes unchecked.
func New(fields []models.FormField, fileFields []models.FileField, initial map[string]any) *Draft {
	d := &Draft{
		fields:     fields,
		fileFields: fileFields,
		values:     make(map[string]string, len(fields)),
		files:      make(map[string][]Upload, len(fileFields)),
		fileErrors: make(map[string]string),
	}

	for _, f := range fields {
		v, ok := initial[f.Name]
		switch {
		case f.Type == models.FieldCheckbox:
			d.values[f.Name] = strconv.FormatBool(ok && truthy(v))
		case ok && v != nil:
			d.values[f.Name] = fmt.Sprint(v)
		default:
			d.values[f.Name] = ""
		}
	}

	return d
}

func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, _ := strconv.ParseBool(val)
		return b || val == "on"
	}
	return false
}

// Fields returns the non-file field descriptors
func (d *Draft) Fields() []models.FormField {
	return d.fields
}

// FileFields returns the file field descriptors
func (d *Draft) FileFields() []models.FileField {
	return d.fileFields
}

func (d *Draft) field(name string) (models.FormField, bool) {
	for _, f := range d.fields {
		if f.Name == name {
			return f, true
		}
	}
	return models.FormField{}, false
}

func (d *Draft) fileField(name string) (models.FileField, bool) {
	for _, f := range d.fileFields {
		if f.Name == name {
			return f, true
		}
	}
	return models.FileField{}, false
}

// Value returns the current value of a field
func (d *Draft) Value(name string) string {
	return d.values[name]
}

// Checked reports whether a checkbox field is ticked
func (d *Draft) Checked(name string) bool {
	return d.values[name] == "true"
}

// Set updates a declared field. Unknown names are ignored.
func (d *Draft) Set(name, value string) {
	f, ok := d.field(name)
	if !ok {
		return
	}
	if f.Type == models.FieldCheckbox {
		value = strconv.FormatBool(truthy(value))
	}
	d.values[name] = value
}

// Files returns the files accepted for a field
func (d *Draft) Files(name string) []Upload {
	return d.files[name]
}

// FileError returns the last size rejection recorded for a field
func (d *Draft) FileError(name string) string {
	return d.fileErrors[name]
}

// Attach offers a batch of files to a field. Each file over the field's
// size limit is rejected on its own; the rest are accepted. A single-file
// field keeps only the first accepted file of the batch.
func (d *Draft) Attach(name string, uploads ...Upload) []Rejection {
	ff, ok := d.fileField(name)
	if !ok {
		return nil
	}

	var accepted []Upload
	var rejected []Rejection
	for _, u := range uploads {
		if u.Size() > ff.MaxBytes() {
			r := Rejection{
				Field:    name,
				Filename: u.Filename,
				Message:  fmt.Sprintf("File %s is too large. Maximum size is %dMB", u.Filename, ff.LimitMB()),
			}
			d.fileErrors[name] = r.Message
			rejected = append(rejected, r)
			continue
		}
		accepted = append(accepted, u)
	}

	if len(accepted) > 0 {
		if ff.Multiple {
			d.files[name] = append(d.files[name], accepted...)
		} else {
			d.files[name] = accepted[:1]
		}
	}

	return rejected
}

// Remove drops the file at index from a field
func (d *Draft) Remove(name string, index int) {
	files := d.files[name]
	if index < 0 || index >= len(files) {
		return
	}
	d.files[name] = append(files[:index:index], files[index+1:]...)
}

// Validate checks required fields, email fields and required file fields.
// The returned map is keyed by field name and empty when the draft is valid.
func (d *Draft) Validate() map[string]string {
	errs := make(map[string]string)

	for _, f := range d.fields {
		value := d.values[f.Name]

		if f.Required {
			var err error
			if f.Type == models.FieldCheckbox {
				err = validate.Var(value == "true", "required")
			} else {
				err = validate.Var(strings.TrimSpace(value), "required")
			}
			if err != nil {
				errs[f.Name] = fmt.Sprintf("%s is required", label(f.Label, f.Name))
			}
		}

		if f.Type == models.FieldEmail && value != "" {
			if err := validate.Var(value, "simple_email"); err != nil {
				errs[f.Name] = "Please enter a valid email address"
			}
		}
	}

	for _, ff := range d.fileFields {
		if ff.Required && len(d.files[ff.Name]) == 0 {
			errs[ff.Name] = fmt.Sprintf("%s is required", label(ff.Label, ff.Name))
		}
	}

	return errs
}

// label falls back to a humanised field name, "first_name" -> "First name"
func label(text, name string) string {
	if text != "" {
		return text
	}
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
