package main

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed instructions.md
var instructionsMarkdown []byte

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Wheel</title>
</head>
<body>
<main>
{{.}}
</main>
</body>
</html>
`))

// renderInstructions turns the embedded markdown into a full HTML page.
func renderInstructions(md []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.New(goldmark.WithExtensions(extension.GFM)).Convert(md, &body); err != nil {
		return nil, fmt.Errorf("render instructions: %w", err)
	}
	var page bytes.Buffer
	if err := pageTemplate.Execute(&page, template.HTML(body.String())); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return page.Bytes(), nil
}

func instructionsHandler(dev bool) (http.HandlerFunc, error) {
	page, err := renderInstructions(instructionsMarkdown)
	if err != nil {
		return nil, err
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body := page
		if dev {
			w.Header().Set("Cache-Control", "no-store")
			// Serve from disk so edits show up without a rebuild.
			if md, err := os.ReadFile("instructions.md"); err == nil {
				if fresh, err := renderInstructions(md); err == nil {
					body = fresh
				}
			}
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	}, nil
}
