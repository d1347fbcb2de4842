package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/cppla/bbscontroller/fields"
	"github.com/cppla/bbscontroller/payload"
	"github.com/cppla/bbscontroller/service"
	"github.com/cppla/bbscontroller/utils"
)

// RPCController exposes every service method as POST /rpc/<method>.
type RPCController struct {
	svc *service.Service
}

// NewRPCController creates a new RPCController instance.
func NewRPCController(svc *service.Service) *RPCController {
	return &RPCController{svc: svc}
}

// Methods returns the handler of every RPC method keyed by its name.
func (r *RPCController) Methods() map[string]gin.HandlerFunc {
	s := r.svc
	return map[string]gin.HandlerFunc{
		"get_user":      handle(s.GetUser),
		"add_user":      handle(s.AddUser),
		"edit_user":     handle(s.EditUser),
		"upload_avatar": handle(s.UploadAvatar),

		"get_category":   handle(s.GetCategory),
		"get_categories": handle(s.GetCategories),
		"add_category":   handle(s.AddCategory),
		"edit_category":  handle(s.EditCategory),
		"hide_category":  handle(s.HideCategory),

		"get_thread":      handle(s.GetThread),
		"get_threads":     handle(s.GetThreads),
		"get_all_threads": handle(s.GetAllThreads),
		"add_thread":      handle(s.AddThread),
		"edit_thread":     handle(s.EditThread),
		"hide_thread":     handle(s.HideThread),

		"get_comment":      handle(s.GetComment),
		"get_comments":     handle(s.GetComments),
		"get_all_comments": handle(s.GetAllComments),
		"add_comment":      handle(s.AddComment),
		"edit_comment":     handle(s.EditComment),
		"hide_comment":     handle(s.HideComment),

		"search": handle(s.Search),
	}
}

// handle decodes and validates the request, runs fn and writes the envelope.
func handle[Req payload.Request, Resp any](fn func(context.Context, Req) (Resp, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req Req
		body, err := ctx.GetRawData()
		if err != nil {
			fail(ctx, payload.NewInvalidContent("unreadable body"))
			return
		}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := binding.JSON.BindBody(body, &req); err != nil {
				fail(ctx, payload.NewInvalidContent(decodeDetail(err)))
				return
			}
		}
		if err := req.Validate(); err != nil {
			fail(ctx, payload.NewInvalidContent(err.Error()))
			return
		}

		resp, err := fn(ctx.Request.Context(), req)
		if err != nil {
			var rerr *payload.ResponseError
			if !errors.As(err, &rerr) {
				rerr = payload.NewInternalServerError()
			}
			fail(ctx, rerr)
			return
		}
		utils.Success(ctx, resp)
	}
}

func fail(ctx *gin.Context, err *payload.ResponseError) {
	utils.Fail(ctx, err.Status(), err.Code(), err.Name(), err.Error())
}

// decodeDetail keeps field validation messages and hides decoder internals.
func decodeDetail(err error) string {
	var verr *fields.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return "invalid " + typeErr.Field
	}
	return "malformed request body"
}
