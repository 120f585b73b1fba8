package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/aanand-mishra/school-api/internal/config"
	"github.com/aanand-mishra/school-api/internal/storage/sqlite"
)

func newTestServer(t *testing.T, staticDir string) *httptest.Server {
	t.Helper()

	h, err := sqlite.New(&config.Config{
		Env:         "dev",
		StoragePath: filepath.Join(t.TempDir(), "school.db"),
		Storage:     config.Storage{MaxOpenConns: 1, BusyTimeout: 5 * time.Second},
	})
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })

	srv := httptest.NewServer(New(h, staticDir))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestStudentScenario(t *testing.T) {
	srv := newTestServer(t, "")

	ana := map[string]any{"nombre": "Ana", "edad": 20, "carrera": "CS"}

	code, body := do(t, srv, http.MethodPost, "/estudiantes", ana)
	if code != http.StatusCreated {
		t.Fatalf("create code = %d, want 201 (%v)", code, body)
	}
	created, _ := body["estudiante"].(map[string]any)
	if created["id"] != float64(1) || created["nombre"] != "Ana" {
		t.Fatalf("created = %v, want id 1 nombre Ana", created)
	}
	if body["mensaje"] != "Estudiante agregado correctamente" {
		t.Fatalf("mensaje = %v", body["mensaje"])
	}

	code, body = do(t, srv, http.MethodPost, "/estudiantes", ana)
	if code != http.StatusBadRequest {
		t.Fatalf("duplicate code = %d, want 400", code)
	}
	if body["error"] != "El estudiante ya existe" {
		t.Fatalf("duplicate error = %v", body["error"])
	}

	code, body = do(t, srv, http.MethodGet, "/estudiantes/1", nil)
	if code != http.StatusOK {
		t.Fatalf("get code = %d, want 200", code)
	}
	if body["nombre"] != "Ana" || body["edad"] != float64(20) || body["carrera"] != "CS" {
		t.Fatalf("get body = %v", body)
	}

	code, body = do(t, srv, http.MethodPut, "/estudiantes/1",
		map[string]any{"nombre": "Ana B", "edad": 21, "carrera": "CS"})
	if code != http.StatusOK {
		t.Fatalf("update code = %d, want 200 (%v)", code, body)
	}
	updated, _ := body["estudiante"].(map[string]any)
	if updated["nombre"] != "Ana B" || updated["edad"] != float64(21) || updated["id"] != float64(1) {
		t.Fatalf("updated = %v", updated)
	}

	code, body = do(t, srv, http.MethodDelete, "/estudiantes/1", nil)
	if code != http.StatusOK {
		t.Fatalf("delete code = %d, want 200", code)
	}
	if body["mensaje"] != "Estudiante eliminado correctamente" {
		t.Fatalf("delete mensaje = %v", body["mensaje"])
	}

	code, body = do(t, srv, http.MethodGet, "/estudiantes/1", nil)
	if code != http.StatusNotFound {
		t.Fatalf("get after delete code = %d, want 404", code)
	}
	if body["error"] != "Estudiante no encontrado" {
		t.Fatalf("not found error = %v", body["error"])
	}
}

func TestResourceNotFoundAndBadInput(t *testing.T) {
	srv := newTestServer(t, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "get missing curso", method: http.MethodGet, path: "/cursos/9", want: http.StatusNotFound},
		{name: "put missing curso", method: http.MethodPut, path: "/cursos/9",
			body: map[string]any{"titulo": "Algebra", "creditos": 3}, want: http.StatusNotFound},
		{name: "delete missing profesor", method: http.MethodDelete, path: "/profesores/9", want: http.StatusNotFound},
		{name: "non integer id", method: http.MethodGet, path: "/profesores/abc", want: http.StatusBadRequest},
		{name: "missing required field", method: http.MethodPost, path: "/profesores",
			body: map[string]any{"edad": 40, "materia": "Fisica"}, want: http.StatusBadRequest},
		{name: "negative age", method: http.MethodPost, path: "/estudiantes",
			body: map[string]any{"nombre": "Ana", "edad": -1, "carrera": "CS"}, want: http.StatusBadRequest},
		{name: "estudiante without edad", method: http.MethodPost, path: "/estudiantes",
			body: map[string]any{"nombre": "Ana", "carrera": "CS"}, want: http.StatusBadRequest},
		{name: "profesor without edad", method: http.MethodPost, path: "/profesores",
			body: map[string]any{"nombre": "Luis", "materia": "Fisica"}, want: http.StatusBadRequest},
		{name: "curso without creditos", method: http.MethodPost, path: "/cursos",
			body: map[string]any{"titulo": "Algebra"}, want: http.StatusBadRequest},
		{name: "put curso without creditos", method: http.MethodPut, path: "/cursos/9",
			body: map[string]any{"titulo": "Algebra"}, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, body := do(t, srv, tt.method, tt.path, tt.body); code != tt.want {
				t.Fatalf("code = %d, want %d (%v)", code, tt.want, body)
			}
		})
	}
}

func TestZeroNumericFieldsAreAccepted(t *testing.T) {
	srv := newTestServer(t, "")

	code, body := do(t, srv, http.MethodPost, "/estudiantes",
		map[string]any{"nombre": "Ana", "edad": 0, "carrera": "CS"})
	if code != http.StatusCreated {
		t.Fatalf("estudiante code = %d, want 201 (%v)", code, body)
	}

	code, body = do(t, srv, http.MethodPost, "/cursos", map[string]any{"titulo": "Taller", "creditos": 0})
	if code != http.StatusCreated {
		t.Fatalf("curso code = %d, want 201 (%v)", code, body)
	}
	created, _ := body["curso"].(map[string]any)
	if created["creditos"] != float64(0) {
		t.Fatalf("curso = %v, want creditos 0", created)
	}
}

func TestListEndpoints(t *testing.T) {
	srv := newTestServer(t, "")

	for _, c := range []map[string]any{
		{"titulo": "Algebra", "creditos": 4},
		{"titulo": "Historia", "creditos": 2},
	} {
		if code, body := do(t, srv, http.MethodPost, "/cursos", c); code != http.StatusCreated {
			t.Fatalf("create curso code = %d (%v)", code, body)
		}
	}

	resp, err := srv.Client().Get(srv.URL + "/cursos")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()

	var list []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[0]["titulo"] != "Algebra" || list[1]["titulo"] != "Historia" {
		t.Fatalf("list = %v", list)
	}

	resp, err = srv.Client().Get(srv.URL + "/profesores")
	if err != nil {
		t.Fatalf("list profesores: %v", err)
	}
	defer resp.Body.Close()
	var empty []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&empty); err != nil {
		t.Fatalf("decode empty list: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("empty list = %#v, want []", empty)
	}
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer(t, "")

	reg := map[string]any{"username": "ana", "email": "ana@example.com", "password": "x"}
	code, body := do(t, srv, http.MethodPost, "/auth/register", reg)
	if code != http.StatusCreated {
		t.Fatalf("register code = %d, want 201 (%v)", code, body)
	}
	if body["username"] != "ana" || body["email"] != "ana@example.com" {
		t.Fatalf("register body = %v", body)
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Fatal("password hash echoed in register response")
	}
	id := body["id"].(float64)

	if code, _ := do(t, srv, http.MethodPost, "/auth/register", reg); code != http.StatusBadRequest {
		t.Fatalf("duplicate register code = %d, want 400", code)
	}
	if code, _ := do(t, srv, http.MethodPost, "/auth/register",
		map[string]any{"username": "ana", "email": "not-an-email", "password": "x"}); code != http.StatusBadRequest {
		t.Fatalf("invalid email code = %d, want 400", code)
	}

	code, body = do(t, srv, http.MethodPost, "/auth/login", map[string]any{"username": "ana", "password": "x"})
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("login = %d %v, want 200 success", code, body)
	}

	_, wrongPass := do(t, srv, http.MethodPost, "/auth/login", map[string]any{"username": "ana", "password": "y"})
	_, unknown := do(t, srv, http.MethodPost, "/auth/login", map[string]any{"username": "bob", "password": "x"})
	for _, b := range []map[string]any{wrongPass, unknown} {
		if b["error"] != "Credenciales inválidas" {
			t.Fatalf("login failure body = %v, want uniform message", b)
		}
	}
	if code, _ := do(t, srv, http.MethodPost, "/auth/login", map[string]any{"username": "bob", "password": "x"}); code != http.StatusUnauthorized {
		t.Fatalf("unknown user code = %d, want 401", code)
	}

	path := "/auth/delete/" + strconv.FormatInt(int64(id), 10)
	if code, _ := do(t, srv, http.MethodDelete, path, nil); code != http.StatusOK {
		t.Fatalf("delete account code = %d, want 200", code)
	}
	if code, _ := do(t, srv, http.MethodDelete, path, nil); code != http.StatusNotFound {
		t.Fatalf("second delete account code = %d, want 404", code)
	}
}

func TestStaticAssets(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		filepath.Join("frontend", "templates", "index.html"): "<h1>Escuela</h1>",
		filepath.Join("frontend", "static", "js", "main.js"): "console.log('ok')",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	srv := newTestServer(t, dir)

	tests := []struct{ path, want string }{
		{path: "/", want: "<h1>Escuela</h1>"},
		{path: "/public/frontend/static/js/main.js", want: "console.log('ok')"},
	}
	for _, tt := range tests {
		path, want := tt.path, tt.want
		resp, err := srv.Client().Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || buf.String() != want {
			t.Fatalf("GET %s = %d %q, want 200 %q", path, resp.StatusCode, buf.String(), want)
		}
	}
}
