package mailservice

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

//go:embed templates/*.html
var templateFS embed.FS

// Rendered is one mail ready to be sent.
type Rendered struct {
	Subject   string
	PlainBody string
	HTMLBody  string
}

// NewTemplate parses every embedded mail template. Each file defines its own
// subject, plainBody and htmlBody blocks, so each one gets a separate set.
func NewTemplate() (*Template, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	set := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.New("mail").ParseFS(templateFS, name)
		if err != nil {
			return nil, fmt.Errorf("could not parse template %s: %w", name, err)
		}
		set[path.Base(name)] = t
	}

	return &Template{set: set}, nil
}

func (tp *Template) Render(name string, data any) (*Rendered, error) {
	t, ok := tp.set[name]
	if !ok {
		return nil, fmt.Errorf("unknown mail template %q", name)
	}

	var out Rendered
	for _, block := range []struct {
		name string
		dst  *string
	}{
		{"subject", &out.Subject},
		{"plainBody", &out.PlainBody},
		{"htmlBody", &out.HTMLBody},
	} {
		var buf bytes.Buffer
		if err := t.ExecuteTemplate(&buf, block.name, data); err != nil {
			return nil, fmt.Errorf("render %s of %s: %w", block.name, name, err)
		}
		*block.dst = buf.String()
	}

	return &out, nil
}
