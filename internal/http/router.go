package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	SessionToken   string
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	if origins := normalizeOrigins(cfg.AllowedOrigins); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", SessionHeader},
			AllowCredentials: true,
			MaxAge:           10 * time.Minute,
		}))
	}
	r.Use(loopbackOnly())

	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.POST("/pair/exchange", h.PairExchange)

		api.GET("/status", h.Status)
		api.GET("/assets", h.Assets)
		api.GET("/collections", h.Collections)
		api.GET("/slots", h.Slots)
		api.GET("/incinerators", h.Incinerators)
		api.GET("/incinerators/:id/repair-status", h.RepairStatus)
		api.GET("/costs", h.Costs)
		api.GET("/proposals", h.Proposals)
		api.GET("/burnrecords", h.BurnRecords)
		api.GET("/log", h.Logs)
	}

	mut := api.Group("", requireSession(cfg.SessionToken))
	{
		mut.POST("/slots/assign", h.AssignSlot)
		mut.POST("/slots/:index/clear", h.ClearSlot)
		mut.POST("/slots/:index/incinerator", h.SetSlotIncinerator)
		mut.POST("/burn", h.Burn)

		mut.POST("/incinerators/:id/fuel", h.Refuel)
		mut.POST("/incinerators/:id/energy", h.Energize)
		mut.POST("/incinerators/:id/repair", h.Repair)
		mut.POST("/incinerators/:id/stake", h.Stake)
		mut.POST("/incinerators/:id/unstake", h.Unstake)

		mut.POST("/proposals/:id/vote", h.Vote)
		mut.POST("/log", h.PostLog)
	}

	return r
}
