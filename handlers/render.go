package handlers

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clearance/portal/forms"
	"clearance/portal/listview"
	"clearance/portal/models"
	"clearance/portal/web"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

var mdRenderer = goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()))

const flashCookie = "portal_flash"

// Flash kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message carried across a redirect
type Flash struct {
	Kind    string
	Message string
}

func (p *Portal) setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    kind + ":" + url.QueryEscape(message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   p.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads the pending flash and expires its cookie
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	kind, raw, ok := strings.Cut(c.Value, ":")
	if !ok {
		return nil
	}
	switch kind {
	case FlashSuccess, FlashError, FlashInfo:
	default:
		return nil
	}
	msg, err := url.QueryUnescape(raw)
	if err != nil || msg == "" {
		return nil
	}
	return &Flash{Kind: kind, Message: msg}
}

// FieldView is one input as the form template draws it
type FieldView struct {
	Field models.FormField
	Value string
	Error string
}

// FileView is one file input as the form template draws it
type FileView struct {
	Field models.FileField
	Error string
}

// FormView is a draft ready for the form template
type FormView struct {
	Fields []FieldView
	Files  []FileView
}

// formView pairs every field of d with its value and error. Password
// values are never echoed back.
func formView(d *forms.Draft, errs map[string]string) FormView {
	var v FormView
	for _, f := range d.Fields() {
		value := d.Value(f.Name)
		if f.Type == models.FieldPassword {
			value = ""
		}
		v.Fields = append(v.Fields, FieldView{Field: f, Value: value, Error: errs[f.Name]})
	}
	for _, f := range d.FileFields() {
		msg := errs[f.Name]
		if msg == "" {
			msg = d.FileError(f.Name)
		}
		v.Files = append(v.Files, FileView{Field: f, Error: msg})
	}
	return v
}

func (p *Portal) funcMap(r *http.Request) template.FuncMap {
	loc := p.Location
	return template.FuncMap{
		"csrfField": func() template.HTML {
			return csrf.TemplateField(r)
		},
		"markdown": func(s string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(s), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(s))
			}
			return template.HTML(buf.String())
		},
		"sortURL": sortURL,
		"formatDate": func(s string) string {
			if t, ok := listview.ParseDate(s, loc); ok {
				return t.Format("Jan 2, 2006")
			}
			return s
		},
		"list": func(items ...string) []string {
			return items
		},
		"inc": func(n int) int { return n + 1 },
		"dec": func(n int) int { return n - 1 },
	}
}

// sortURL links to the same list sorted by key, flipping the direction when
// the list is already sorted by it
func sortURL(q listview.Query, key string) string {
	dir := listview.Asc
	if key == listview.SortDate {
		dir = listview.Desc
	}
	if q.SortBy == key {
		dir = listview.Asc
		if q.SortDir == listview.Asc {
			dir = listview.Desc
		}
	}
	q.SortBy = key
	q.SortDir = dir
	return "?" + q.Values().Encode()
}

// render executes the named page inside the layout
func (p *Portal) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, err := template.New("layout.html").Funcs(p.funcMap(r)).ParseFS(web.Templates, "templates/layout.html", "templates/"+name)
	if err != nil {
		log.Printf("Error parsing template %s: %v", name, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Printf("Error executing template %s: %v", name, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func formatStamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
