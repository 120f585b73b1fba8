// Package account contains the HTTP handlers of the /auth endpoints.
package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/school-api/internal/auth"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
	"github.com/aanand-mishra/school-api/internal/utils/request"
	"github.com/aanand-mishra/school-api/internal/utils/response"
)

// Credentials is the contract the handlers need; *auth.Authenticator
// satisfies it.
type Credentials interface {
	Register(ctx context.Context, username, email, password string) (types.User, error)
	Login(ctx context.Context, username, password string) error
	DeleteAccount(ctx context.Context, id int64) error
}

const (
	msgDuplicate = "El usuario o email ya existe"
	msgBadLogin  = "Credenciales inválidas"
	msgNotFound  = "Usuario no encontrado"
	msgDeleted   = "Usuario eliminado correctamente"
	msgInternal  = "internal server error"
)

// Register handles POST /auth/register.
//
// Success: 201 {"id": 1, "username": "ana", "email": "ana@example.com"}.
// The password hash is never echoed.
func Register(creds Credentials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RegisterRequest
		if !request.DecodeJSON(w, r, &req) {
			return
		}
		slog.Info("registering a user", slog.String("username", req.Username))

		user, err := creds.Register(r.Context(), req.Username, req.Email, req.Password)
		if errors.Is(err, storage.ErrDuplicate) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New(msgDuplicate)))
			return
		}
		if err != nil {
			internalError(w, "register", err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, user)
	}
}

// Login handles POST /auth/login.
//
// An unknown user and a wrong password get the same 401 body; only the
// log line tells them apart.
func Login(creds Credentials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		if !request.DecodeJSON(w, r, &req) {
			return
		}

		err := creds.Login(r.Context(), req.Username, req.Password)
		var authErr *auth.AuthError
		if errors.As(err, &authErr) {
			slog.Warn("login rejected",
				slog.String("username", req.Username),
				slog.String("reason", string(authErr.Reason)))
			response.WriteJSON(w, http.StatusUnauthorized,
				response.GeneralError(errors.New(msgBadLogin)))
			return
		}
		if err != nil {
			internalError(w, "login", err)
			return
		}

		slog.Info("login succeeded", slog.String("username", req.Username))
		response.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// Delete handles DELETE /auth/delete/{id}.
func Delete(creds Credentials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a user", slog.Int64("id", id))

		err := creds.DeleteAccount(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound,
				response.GeneralError(errors.New(msgNotFound)))
			return
		}
		if err != nil {
			internalError(w, "delete account", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Message(msgDeleted, "", nil))
	}
}

func internalError(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError,
		response.GeneralError(errors.New(msgInternal)))
}
