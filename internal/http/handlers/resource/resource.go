// Package resource contains the HTTP handlers shared by every catalog
// resource (estudiantes, profesores, cursos).
//
// Each handler is a factory: it receives its dependencies once, when the
// route is registered, and returns the http.HandlerFunc that serves every
// request:
//
//	router.HandleFunc("POST /estudiantes", resource.New[types.Student, types.StudentRequest](students, names))
package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/utils/request"
	"github.com/aanand-mishra/school-api/internal/utils/response"
)

// Store is the persistence contract the handlers need.
// repository.Repository satisfies it for every record type.
type Store[E any] interface {
	Create(ctx context.Context, rec E) (E, error)
	List(ctx context.Context) ([]E, error)
	Get(ctx context.Context, id int64) (E, error)
	Update(ctx context.Context, id int64, rec E) (E, error)
	Delete(ctx context.Context, id int64) error
}

// Request is a decoded request body that converts into the row it describes.
type Request[E any] interface {
	Model() E
}

// Names labels a resource in response bodies.
type Names struct {
	// Key is the lowercase singular, used as the JSON key of the record
	// in confirmations, e.g. "estudiante".
	Key string
	// Title is the capitalised singular, e.g. "Estudiante".
	Title string
}

func (n Names) duplicate() string { return fmt.Sprintf("El %s ya existe", n.Key) }
func (n Names) notFound() string  { return fmt.Sprintf("%s no encontrado", n.Title) }
func (n Names) done(verb string) string {
	return fmt.Sprintf("%s %s correctamente", n.Title, verb)
}

// New handles POST /{resource}.
//
// Success: 201 {"mensaje": "Estudiante agregado correctamente", "estudiante": {...}}
// Errors:  400 on an empty/malformed body, a validation failure or a
// natural key that already exists; 500 on a storage fault.
func New[E any, R Request[E]](store Store[E], n Names) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a "+n.Key)

		var req R
		if !request.DecodeJSON(w, r, &req) {
			return
		}

		created, err := store.Create(r.Context(), req.Model())
		if err != nil {
			writeError(w, n, err)
			return
		}

		slog.Info(n.Key+" created", slog.Any("record", created))
		response.WriteJSON(w, http.StatusCreated,
			response.Message(n.done("agregado"), n.Key, created))
	}
}

// GetList handles GET /{resource}. It returns [] (not null) when empty.
func GetList[E any](store Store[E], n Names) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing " + n.Key)

		records, err := store.List(r.Context())
		if err != nil {
			writeError(w, n, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// GetByID handles GET /{resource}/{id}.
func GetByID[E any](store Store[E], n Names) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a "+n.Key, slog.Int64("id", id))

		rec, err := store.Get(r.Context(), id)
		if err != nil {
			writeError(w, n, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, rec)
	}
}

// Update handles PUT /{resource}/{id}. Every field is replaced.
func Update[E any, R Request[E]](store Store[E], n Names) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a "+n.Key, slog.Int64("id", id))

		var req R
		if !request.DecodeJSON(w, r, &req) {
			return
		}

		updated, err := store.Update(r.Context(), id, req.Model())
		if err != nil {
			writeError(w, n, err)
			return
		}

		slog.Info(n.Key+" updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK,
			response.Message(n.done("actualizado"), n.Key, updated))
	}
}

// Delete handles DELETE /{resource}/{id}.
func Delete[E any](store Store[E], n Names) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a "+n.Key, slog.Int64("id", id))

		if err := store.Delete(r.Context(), id); err != nil {
			writeError(w, n, err)
			return
		}

		slog.Info(n.Key+" deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, response.Message(n.done("eliminado"), "", nil))
	}
}

// Register wires the five routes of a resource under prefix, e.g. "/estudiantes".
// R is the body type accepted by POST and PUT.
func Register[E any, R Request[E]](mux *http.ServeMux, prefix string, store Store[E], n Names) {
	mux.HandleFunc("POST "+prefix, New[E, R](store, n))
	mux.HandleFunc("GET "+prefix, GetList(store, n))
	mux.HandleFunc("GET "+prefix+"/{id}", GetByID(store, n))
	mux.HandleFunc("PUT "+prefix+"/{id}", Update[E, R](store, n))
	mux.HandleFunc("DELETE "+prefix+"/{id}", Delete(store, n))
}

// writeError maps the storage error taxonomy onto status codes.
func writeError(w http.ResponseWriter, n Names, err error) {
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		slog.Info(n.Key+" rejected", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New(n.duplicate())))
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound,
			response.GeneralError(errors.New(n.notFound())))
	default:
		slog.Error(n.Key+" storage failure", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError,
			response.GeneralError(errors.New("internal server error")))
	}
}
