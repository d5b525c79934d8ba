package models

// Field types understood by the form engine
const (
	FieldText     = "text"
	FieldEmail    = "email"
	FieldNumber   = "number"
	FieldDate     = "date"
	FieldTel      = "tel"
	FieldPassword = "password"
	FieldTextarea = "textarea"
	FieldSelect   = "select"
	FieldCheckbox = "checkbox"
)

// DefaultMaxFileSizeMB applies to file fields that set no limit
const DefaultMaxFileSizeMB = 10

// Option is a select choice
type Option struct {
	Value string
	Label string
}

// FormField describes one non-file input
type FormField struct {
	Name        string
	Type        string
	Label       string
	Placeholder string
	Required    bool
	Disabled    bool
	Options     []Option
}

// FileField describes one file input. Multiple=false keeps a single file.
type FileField struct {
	Name      string
	Label     string
	Accept    string
	Required  bool
	Multiple  bool
	MaxSizeMB int
}

// MaxBytes is the size limit in bytes
func (f FileField) MaxBytes() int64 {
	mb := f.MaxSizeMB
	if mb <= 0 {
		mb = DefaultMaxFileSizeMB
	}
	return int64(mb) * 1024 * 1024
}

// LimitMB is the configured limit, or the default when unset
func (f FileField) LimitMB() int {
	if f.MaxSizeMB <= 0 {
		return DefaultMaxFileSizeMB
	}
	return f.MaxSizeMB
}
