package server

import "html/template"

type indexView struct {
	DocCount  int
	Generated string
	Groups    []indexGroup
}

type indexGroup struct {
	Name  string
	Links []indexLink
}

type indexLink struct {
	Href        string
	Name        string
	Kind        string
	Description string
}

type pageView struct {
	Title string
	Group string
	Body  template.HTML
}

type errorView struct {
	Status  int
	Message string
}

//nolint:gochecknoglobals // parsed once at init
var pages = template.Must(template.New("apidox").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.}} · apidox</title>
<style>
body{font-family:system-ui,sans-serif;max-width:58rem;margin:2rem auto;padding:0 1rem;line-height:1.5}
code,pre{font-family:ui-monospace,monospace}
.member{border-top:1px solid #ddd;padding-top:.5rem}
.kind,.muted{color:#777}
</style>
</head>
<body>
<nav><a href="/">apidox</a></nav>
{{end}}

{{define "foot"}}</body>
</html>
{{end}}

{{define "index"}}{{template "head" "Index"}}
<h1>Reference</h1>
<p class="muted">{{.DocCount}} page(s), indexed {{.Generated}}</p>
{{range .Groups}}
<section>
<h2>{{.Name}}</h2>
<ul>
{{range .Links}}<li><a href="{{.Href}}">{{.Name}}</a> <span class="kind">{{.Kind}}</span>{{with .Description}} <span class="muted">{{.}}</span>{{end}}</li>
{{end}}</ul>
</section>
{{else}}
<p>No pages indexed yet. Run <code>apidox index</code>.</p>
{{end}}
{{template "foot"}}{{end}}

{{define "page"}}{{template "head" .Title}}
<p class="muted">{{.Group}}</p>
{{.Body}}
{{template "foot"}}{{end}}

{{define "error"}}{{template "head" "Error"}}
<h1>{{.Status}}</h1>
<p>{{.Message}}</p>
{{template "foot"}}{{end}}
`))
