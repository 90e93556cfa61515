package todo

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/mitchellh/mapstructure"

	"github.com/timada-org/todo/internal/sse"
	"github.com/timada-org/todo/pkg/topic"
)

const defaultEventFilter = "todos/#"

func (app *App) index() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		query := r.URL.Query()

		app.render(w, r, ListFilter{
			ShowAll: parseShowAll(query.Get("show_all")),
			Search:  query.Get("search_query"),
		}, query.Get("error"))
	}
}

func (app *App) search() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		app.render(w, r, ListFilter{
			ShowAll: true,
			Search:  r.Form.Get("query"),
		}, "")
	}
}

func (app *App) create() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		form := make(map[string]any, len(r.PostForm))
		for key := range r.PostForm {
			form[key] = r.PostForm.Get(key)
		}

		var input CreateInput
		if err := mapstructure.Decode(form, &input); err != nil {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		todo, err := app.store.Create(input)
		switch {
		case errors.Is(err, ErrTaskRequired), errors.Is(err, ErrInvalidPriority):
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		case err != nil:
			app.logger.Error().Err(err).Uint64("todo_id", todo.ID).Msg("failed to create todo")
			http.Error(w, "Internal server error.", http.StatusInternalServerError)
			return
		}

		app.logger.Debug().Uint64("todo_id", todo.ID).Str("task", todo.Task).Msg("todo created")
		app.publish(newEvent(EventCreated, todo))

		http.Redirect(w, r, "/?show_all=true", http.StatusSeeOther)
	}
}

func (app *App) markDone() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		id, err := strconv.ParseUint(p.ByName("id"), 10, 64)
		if err != nil {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		todo, err := app.store.MarkDone(id)
		switch {
		case errors.Is(err, ErrNotFound):
			http.Redirect(w, r, notFoundLocation("false", id), http.StatusSeeOther)
			return
		case err != nil:
			app.logger.Error().Err(err).Uint64("todo_id", id).Msg("failed to mark todo done")
			http.Error(w, "Internal server error.", http.StatusInternalServerError)
			return
		}

		app.logger.Debug().Uint64("todo_id", id).Msg("todo marked done")
		app.publish(newEvent(EventUpdated, todo))

		http.Redirect(w, r, "/?show_all=false", http.StatusSeeOther)
	}
}

func (app *App) delete() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		id, err := strconv.ParseUint(p.ByName("id"), 10, 64)
		if err != nil {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		todo, err := app.store.Delete(id)
		switch {
		case errors.Is(err, ErrNotFound):
			http.Redirect(w, r, notFoundLocation("true", id), http.StatusSeeOther)
			return
		case err != nil:
			app.logger.Error().Err(err).Uint64("todo_id", id).Msg("failed to delete todo")
			http.Error(w, "Internal server error.", http.StatusInternalServerError)
			return
		}

		app.logger.Debug().Uint64("todo_id", id).Msg("todo deleted")
		app.publish(newEvent(EventDeleted, todo))

		http.Redirect(w, r, "/?show_all=true", http.StatusSeeOther)
	}
}

func (app *App) subscribe() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		value := r.URL.Query().Get("filter")
		if value == "" {
			value = defaultEventFilter
		}

		filter, err := topic.NewFilter(value)
		if err != nil {
			http.Error(w, "Bad request.", http.StatusBadRequest)
			return
		}

		app.events.Serve(w, r, func(id string, session *sse.Session) {
			app.bus.Subscribe(id, session, filter)
			app.logger.Debug().Str("session_id", id).Str("filter", filter.String()).Msg("session opened")
		})
	}
}

// parseShowAll reads a form boolean. Missing or unrecognized values mean true.
func parseShowAll(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "0", "f", "false", "n", "no", "off":
		return false
	default:
		return true
	}
}

func notFoundLocation(showAll string, id uint64) string {
	return "/?show_all=" + showAll + "&error=" + url.QueryEscape(fmt.Sprintf("Todo %d not found.", id))
}
