// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, repositories, and storage can all import types without
// depending on each other.
//
// Struct tags serve three purposes:
//
//  1. json:"..."     controls the field name in request/response bodies.
//  2. validate:"..." rules checked by go-playground/validator on the
//     request types before a value ever reaches a repository.
//  3. bun:"..."      maps the struct onto its table for the bun query
//     builder (table name, primary key, column names).
package types

import "github.com/uptrace/bun"

// Student is a row of the estudiantes table. Nombre is the natural key.
type Student struct {
	bun.BaseModel `bun:"table:estudiantes" json:"-"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	Nombre  string `bun:"nombre,notnull" json:"nombre"`
	Edad    int    `bun:"edad,notnull" json:"edad"`
	Carrera string `bun:"carrera,notnull" json:"carrera"`
}

func (s *Student) GetID() int64       { return s.ID }
func (s *Student) SetID(id int64)     { s.ID = id }
func (s *Student) NaturalKey() string { return s.Nombre }

// Professor is a row of the profesores table. Nombre is the natural key.
type Professor struct {
	bun.BaseModel `bun:"table:profesores" json:"-"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	Nombre  string `bun:"nombre,notnull" json:"nombre"`
	Edad    int    `bun:"edad,notnull" json:"edad"`
	Materia string `bun:"materia,notnull" json:"materia"`
}

func (p *Professor) GetID() int64       { return p.ID }
func (p *Professor) SetID(id int64)     { p.ID = id }
func (p *Professor) NaturalKey() string { return p.Nombre }

// Course is a row of the cursos table. Titulo is the natural key.
type Course struct {
	bun.BaseModel `bun:"table:cursos" json:"-"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Titulo   string `bun:"titulo,notnull" json:"titulo"`
	Creditos int    `bun:"creditos,notnull" json:"creditos"`
}

func (c *Course) GetID() int64       { return c.ID }
func (c *Course) SetID(id int64)     { c.ID = id }
func (c *Course) NaturalKey() string { return c.Titulo }

// User is a row of the usuarios table. Both Username and Email are unique.
// PasswordHash never leaves the server: it is excluded from JSON.
type User struct {
	bun.BaseModel `bun:"table:usuarios" json:"-"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	Username     string `bun:"username,notnull" json:"username"`
	Email        string `bun:"email,notnull" json:"email"`
	PasswordHash string `bun:"password_hash,notnull" json:"-"`
}

// StudentRequest is the body of POST and PUT /estudiantes.
//
// Numeric fields are pointers so that a missing "edad" fails required
// instead of decoding as 0.
type StudentRequest struct {
	Nombre  string `json:"nombre" validate:"required"`
	Edad    *int   `json:"edad" validate:"required,gte=0"`
	Carrera string `json:"carrera" validate:"required"`
}

// Model returns the row the request describes. Call it only after
// validation, when Edad is known to be set.
func (r StudentRequest) Model() Student {
	return Student{Nombre: r.Nombre, Edad: *r.Edad, Carrera: r.Carrera}
}

// ProfessorRequest is the body of POST and PUT /profesores.
type ProfessorRequest struct {
	Nombre  string `json:"nombre" validate:"required"`
	Edad    *int   `json:"edad" validate:"required,gte=0"`
	Materia string `json:"materia" validate:"required"`
}

func (r ProfessorRequest) Model() Professor {
	return Professor{Nombre: r.Nombre, Edad: *r.Edad, Materia: r.Materia}
}

// CourseRequest is the body of POST and PUT /cursos.
type CourseRequest struct {
	Titulo   string `json:"titulo" validate:"required"`
	Creditos *int   `json:"creditos" validate:"required"`
}

func (r CourseRequest) Model() Course {
	return Course{Titulo: r.Titulo, Creditos: *r.Creditos}
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
