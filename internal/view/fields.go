package view

import (
	"html/template"
	"strings"
)

// Attr is one HTML attribute on a form widget.
type Attr struct {
	Key   string
	Value string
}

// Field describes a form input. It is a value type: every helper returns a
// new Field and never mutates the receiver's attributes.
type Field struct {
	Type  string
	Name  string
	Value string
	attrs []Attr
}

// Input builds a field of the given input type.
func Input(typ, name, value string) Field {
	return Field{Type: typ, Name: name, Value: value}
}

// Attr returns the value of attribute key, or "".
func (f Field) Attr(key string) string {
	for _, a := range f.attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// Attrs returns a copy of the widget attributes in insertion order.
func (f Field) Attrs() []Attr {
	return append([]Attr(nil), f.attrs...)
}

// With returns a copy of f with key set to value, replacing any previous value.
func (f Field) With(key, value string) Field {
	attrs := make([]Attr, 0, len(f.attrs)+1)
	replaced := false
	for _, a := range f.attrs {
		if a.Key == key {
			attrs = append(attrs, Attr{Key: key, Value: value})
			replaced = true
			continue
		}
		attrs = append(attrs, a)
	}
	if !replaced {
		attrs = append(attrs, Attr{Key: key, Value: value})
	}
	f.attrs = attrs
	return f
}

// AddClass appends css to the field's class attribute, keeping existing classes.
func AddClass(f Field, css string) Field {
	class := strings.TrimSpace(f.Attr("class") + " " + css)
	return f.With("class", class)
}

// AddAttr sets one attribute from a "key:value" argument. A malformed
// argument leaves the field unchanged.
func AddAttr(f Field, arg string) Field {
	key, value, ok := strings.Cut(arg, ":")
	if !ok || strings.TrimSpace(key) == "" {
		return f
	}
	return f.With(strings.TrimSpace(key), value)
}

// HTML renders the widget.
func (f Field) HTML() template.HTML {
	esc := template.HTMLEscapeString
	var b strings.Builder
	if f.Type == "textarea" {
		b.WriteString(`<textarea name="` + esc(f.Name) + `" id="id_` + esc(f.Name) + `"`)
		writeAttrs(&b, f.attrs)
		b.WriteString(">" + esc(f.Value) + "</textarea>")
		return template.HTML(b.String())
	}

	b.WriteString(`<input type="` + esc(f.Type) + `" name="` + esc(f.Name) + `" id="id_` + esc(f.Name) + `"`)
	if f.Type != "password" && f.Value != "" {
		b.WriteString(` value="` + esc(f.Value) + `"`)
	}
	writeAttrs(&b, f.attrs)
	b.WriteString(">")
	return template.HTML(b.String())
}

func writeAttrs(b *strings.Builder, attrs []Attr) {
	for _, a := range attrs {
		b.WriteString(" " + template.HTMLEscapeString(a.Key) + `="` + template.HTMLEscapeString(a.Value) + `"`)
	}
}
