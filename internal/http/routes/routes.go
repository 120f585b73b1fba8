// Package routes builds the application's HTTP router.
//
// Route table:
//
//	POST   /estudiantes         GET /estudiantes   GET|PUT|DELETE /estudiantes/{id}
//	POST   /profesores          GET /profesores    GET|PUT|DELETE /profesores/{id}
//	POST   /cursos              GET /cursos        GET|PUT|DELETE /cursos/{id}
//	POST   /auth/register
//	POST   /auth/login
//	DELETE /auth/delete/{id}
//	GET    /public/...          static assets (when a static dir is configured)
//	GET    /                    index page     (when a static dir is configured)
package routes

import (
	"net/http"
	"path/filepath"

	"github.com/aanand-mishra/school-api/internal/auth"
	"github.com/aanand-mishra/school-api/internal/http/handlers/account"
	"github.com/aanand-mishra/school-api/internal/http/handlers/resource"
	"github.com/aanand-mishra/school-api/internal/repository"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
)

// New wires every repository and the authenticator on top of handle.
// staticDir may be empty.
func New(handle *storage.Handle, staticDir string) *http.ServeMux {
	router := http.NewServeMux()

	resource.Register[types.Student, types.StudentRequest](router, "/estudiantes",
		repository.New[types.Student](handle, "estudiante"),
		resource.Names{Key: "estudiante", Title: "Estudiante"})
	resource.Register[types.Professor, types.ProfessorRequest](router, "/profesores",
		repository.New[types.Professor](handle, "profesor"),
		resource.Names{Key: "profesor", Title: "Profesor"})
	resource.Register[types.Course, types.CourseRequest](router, "/cursos",
		repository.New[types.Course](handle, "curso"),
		resource.Names{Key: "curso", Title: "Curso"})

	creds := auth.New(handle, nil)
	router.HandleFunc("POST /auth/register", account.Register(creds))
	router.HandleFunc("POST /auth/login", account.Login(creds))
	router.HandleFunc("DELETE /auth/delete/{id}", account.Delete(creds))

	if staticDir != "" {
		router.Handle("GET /public/", http.StripPrefix("/public/", http.FileServer(http.Dir(staticDir))))
		index := filepath.Join(staticDir, "frontend", "templates", "index.html")
		router.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, index)
		})
	}

	return router
}
