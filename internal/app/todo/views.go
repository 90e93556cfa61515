package todo

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var embeddedStatic embed.FS

var staticFS = mustSub(embeddedStatic, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}

	return sub
}

type views struct {
	index *template.Template
}

func newViews() *views {
	return &views{
		index: template.Must(template.ParseFS(templatesFS, "templates/index.html")),
	}
}

type indexData struct {
	Todos       []Todo
	ShowAll     bool
	SearchQuery string
	Error       string
	Total       int
	Remaining   int
	Priorities  []Priority
}

func (app *App) render(w http.ResponseWriter, r *http.Request, filter ListFilter, errMessage string) {
	all := app.store.List(ListFilter{ShowAll: true})

	remaining := 0
	for _, todo := range all {
		if !todo.Done {
			remaining++
		}
	}

	data := indexData{
		Todos:       app.store.List(filter),
		ShowAll:     filter.ShowAll,
		SearchQuery: filter.Search,
		Error:       errMessage,
		Total:       len(all),
		Remaining:   remaining,
		Priorities:  Priorities,
	}

	var buf bytes.Buffer
	if err := app.views.index.Execute(&buf, data); err != nil {
		app.logger.Error().Err(err).Msg("failed to render index")
		http.Error(w, "Internal server error.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		app.logger.Debug().Err(err).Msg("failed to write response")
	}
}
