package service

import (
	"go.uber.org/zap"

	"github.com/cppla/bbscontroller/apperr"
	"github.com/cppla/bbscontroller/payload"
	"github.com/cppla/bbscontroller/utils"
)

// external maps every internal error kind onto what the caller is allowed to see.
var external = map[apperr.Kind]func() *payload.ResponseError{
	apperr.ServerError:     payload.NewInternalServerError,
	apperr.ConnectionError: payload.NewInternalServerError,
	apperr.QueryError:      payload.NewInternalServerError,
	apperr.ValidationError: payload.NewInternalServerError,
	apperr.ContentNotFound: payload.NewMissingContent,
}

// respond logs err with its internal detail and returns the external error for it.
func respond(method string, err error) *payload.ResponseError {
	kind := apperr.KindOf(err)
	mk, ok := external[kind]
	if !ok {
		mk = payload.NewInternalServerError
	}
	out := mk()

	fields := []zap.Field{zap.String("method", method), zap.String("kind", kind.String()), zap.Error(err)}
	if out.Kind == payload.InternalServerError {
		utils.Logger.Error("rpc failed", fields...)
	} else {
		utils.Logger.Debug("rpc failed", fields...)
	}
	return out
}
