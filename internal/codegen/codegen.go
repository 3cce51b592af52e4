// Package codegen renders the scripting wrappers for everything in a
// registry: one function per class returning its class id, one per
// extension forwarding to CallExtension, plus a numbered summary.
package codegen

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/cbegin/scoredraft-go/internal/registry"
)

type entry struct {
	ID         int
	Name       string
	Comment    []string
	Input      string
	CallParams string
}

type section struct {
	Title string
	Ctor  string
	Items []entry
}

var codeTmpl = template.Must(template.New("code").Parse(
	`# ScoreDraft Generated Code

{{range .Classes}}{{$ctor := .Ctor}}# {{.Title}}

{{range .Items}}def {{.Name}}():
{{range .Comment}}	# {{.}}
{{end}}	return {{$ctor}}({{.ID}})

{{end}}{{end}}# Interfaces

{{range .Extensions}}def {{.Name}}({{.Input}}):
{{range .Comment}}	# {{.}}
{{end}}	return ScoreDraft.CallExtension({{.ID}}{{if .CallParams}},({{.CallParams}}){{end}})

{{end}}`))

var summaryTmpl = template.Must(template.New("summary").Parse(
	`=====================================
ScoreDraft Generated Code - Summary
=====================================

{{range .Classes}}{{.Title}}:
{{range .Items}}{{.ID}}: {{.Name}}
{{end}}
{{end}}Interfaces:
{{range .Extensions}}{{.ID}}: {{.Name}}
{{end}}
`))

// Generate returns the wrapper source and its summary.
func Generate(r *registry.Registry) (code, summary string, err error) {
	data := struct {
		Classes    []section
		Extensions []entry
	}{
		Classes: []section{
			{Title: "Instruments", Ctor: "Instrument", Items: classEntries(r.InstrumentClasses())},
			{Title: "Percussions", Ctor: "Percussion", Items: classEntries(r.PercussionClasses())},
			{Title: "Singers", Ctor: "Singer", Items: classEntries(r.SingerClasses())},
		},
	}
	for i, e := range r.Extensions() {
		data.Extensions = append(data.Extensions, entry{
			ID:         i,
			Name:       e.Name,
			Comment:    lines(e.Comment),
			Input:      e.InputParams,
			CallParams: e.CallParams,
		})
	}

	var c, s bytes.Buffer
	if err := codeTmpl.Execute(&c, data); err != nil {
		return "", "", err
	}
	if err := summaryTmpl.Execute(&s, data); err != nil {
		return "", "", err
	}
	return c.String(), s.String(), nil
}

func classEntries[T any](classes []registry.Class[T]) []entry {
	out := make([]entry, len(classes))
	for i, c := range classes {
		out[i] = entry{ID: i, Name: c.Name, Comment: lines(c.Comment)}
	}
	return out
}

func lines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
