package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/bbscontroller/middleware"
	"github.com/cppla/bbscontroller/payload"
	"github.com/cppla/bbscontroller/service"
	"github.com/cppla/bbscontroller/utils"
)

// StatsController reports table sizes and request counters.
type StatsController struct {
	svc     *service.Service
	counter *middleware.RequestCounter
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(svc *service.Service, counter *middleware.RequestCounter) *StatsController {
	return &StatsController{svc: svc, counter: counter}
}

// GetStats returns aggregate statistics for the forum.
func (s *StatsController) GetStats(ctx *gin.Context) {
	stats, err := s.svc.Stats(ctx.Request.Context())
	if err != nil {
		rerr, ok := err.(*payload.ResponseError)
		if !ok {
			rerr = payload.NewInternalServerError()
		}
		fail(ctx, rerr)
		return
	}

	utils.Success(ctx, gin.H{
		"user_count":     stats.Users,
		"category_count": stats.Categories,
		"thread_count":   stats.Threads,
		"comment_count":  stats.Comments,
		"request_count":  s.counter.Count(),
		"dispatch":       stats.Dispatch,
	})
}
