package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/noorvia/noorvia-backend/api/middleware"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	pkgerrors "github.com/noorvia/noorvia-backend/pkg/errors"
)

func requireUser(r *http.Request) (uuid.UUID, enums.UserRole, error) {
	userID, role, ok := middleware.Actor(r.Context())
	if !ok {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "not authorized")
	}
	return userID, role, nil
}
