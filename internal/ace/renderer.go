package ace

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"
)

// Template file names within a message type directory.
const (
	SubjectFile  = "subject.txt"
	TextBodyFile = "body.txt"
	HTMLBodyFile = "body.html"
)

// ErrTemplateNotFound is returned when a message type has no subject or no body.
var ErrTemplateNotFound = errors.New("template not found")

// Renderer renders messages from templates laid out as
// {app_label}/{name}/[{theme}/][{language}/]{file}.
type Renderer struct {
	templates fs.FS
}

// NewRenderer creates a renderer over templates.
func NewRenderer(templates fs.FS) *Renderer {
	return &Renderer{templates: templates}
}

// Render renders msg for the given theme ("" for the default theme).
func (r *Renderer) Render(msg *Message, theme string) (*RenderedEmail, error) {
	dirs := candidateDirs(msg.Type, theme, msg.Language)

	subjectSrc, err := r.lookup(dirs, SubjectFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s", err, msg.Type, SubjectFile)
	}
	textSrc, textErr := r.lookup(dirs, TextBodyFile)
	htmlSrc, htmlErr := r.lookup(dirs, HTMLBodyFile)
	if textErr != nil && htmlErr != nil {
		return nil, fmt.Errorf("%w: %s has no body template", ErrTemplateNotFound, msg.Type)
	}

	email := &RenderedEmail{
		MessageID: msg.ID,
		Type:      msg.Type,
		To:        msg.Recipient,
	}

	subject, err := renderText(SubjectFile, subjectSrc, msg.Context)
	if err != nil {
		return nil, err
	}
	email.Subject = strings.Join(strings.Fields(subject), " ")

	if textErr == nil {
		if email.TextBody, err = renderText(TextBodyFile, textSrc, msg.Context); err != nil {
			return nil, err
		}
	}
	if htmlErr == nil {
		if email.HTMLBody, err = renderHTML(HTMLBodyFile, htmlSrc, msg.Context); err != nil {
			return nil, err
		}
	}

	return email, nil
}

// candidateDirs lists template directories from most to least specific.
func candidateDirs(t MessageType, theme, lang string) []string {
	base := path.Join(t.AppLabel, t.Name)

	var langs []string
	if lang != "" {
		langs = append(langs, lang)
		if i := strings.IndexAny(lang, "-_"); i > 0 {
			langs = append(langs, lang[:i])
		}
	}

	var dirs []string
	if theme != "" {
		for _, l := range langs {
			dirs = append(dirs, path.Join(base, theme, l))
		}
		dirs = append(dirs, path.Join(base, theme))
	}
	for _, l := range langs {
		dirs = append(dirs, path.Join(base, l))
	}
	return append(dirs, base)
}

func (r *Renderer) lookup(dirs []string, name string) (string, error) {
	for _, dir := range dirs {
		data, err := fs.ReadFile(r.templates, path.Join(dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read template %s: %w", path.Join(dir, name), err)
		}
	}
	return "", ErrTemplateNotFound
}

func renderText(name, src string, data map[string]any) (string, error) {
	tmpl, err := texttemplate.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(name, src string, data map[string]any) (string, error) {
	tmpl, err := htmltemplate.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
