package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/swapdex/swapd/internal/core/application/orderbook"
	"github.com/swapdex/swapd/internal/core/application/pubsub"
	"github.com/swapdex/swapd/internal/core/application/relay"
	"github.com/swapdex/swapd/internal/core/application/swap"
	interfaces "github.com/swapdex/swapd/internal/interfaces"
)

const shutdownTimeout = 5 * time.Second

type ServiceOpts struct {
	Port       int
	AuthSecret string
	NoAuth     bool

	OrderbookSvc *orderbook.Service
	SwapSvc      *swap.Service
	RelaySvc     *relay.Service
	// PubSubSvc is optional, webhook routes reply 501 without it.
	PubSubSvc *pubsub.Service
}

func (o ServiceOpts) validate() error {
	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	if !o.NoAuth && o.AuthSecret == "" {
		return fmt.Errorf("missing auth secret")
	}
	if o.OrderbookSvc == nil {
		return fmt.Errorf("orderbook app service must not be null")
	}
	if o.SwapSvc == nil {
		return fmt.Errorf("swap app service must not be null")
	}
	if o.RelaySvc == nil {
		return fmt.Errorf("relay app service must not be null")
	}
	return nil
}

type service struct {
	opts   ServiceOpts
	server *http.Server
}

func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	gin.SetMode(gin.ReleaseMode)
	return &service{
		opts: opts,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           newRouter(opts),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *service) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http: server stopped unexpectedly")
		}
	}()
	log.Infof("http: listening on %s", s.server.Addr)
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http: failed to gracefully stop server")
	}
	log.Info("http: stopped server")
}

func newRouter(opts ServiceOpts) *gin.Engine {
	h := newHandler(opts.OrderbookSvc, opts.SwapSvc, opts.RelaySvc, opts.PubSubSvc)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(authenticate([]byte(opts.AuthSecret), opts.NoAuth))

	party := api.Group("", requireParty)
	{
		party.PUT("/orderbook/limit", h.addLimitOrder)
		party.DELETE("/orderbook/limit", h.cancelLimitOrder)
		party.GET("/orderbook", h.getOrderBook)
		party.GET("/orders", h.listOrders)

		party.PUT("/swap", h.openSwap)
		party.POST("/swap", h.commitSwap)
		party.DELETE("/swap/:id", h.abortSwap)
		party.GET("/swap/:id", h.getSwap)
		party.GET("/swaps", h.listSwaps)

		party.GET("/updates", h.updates)
	}

	operator := api.Group("/operator", requireOperator)
	{
		operator.GET("/swaps", h.listOperatorSwaps)
		operator.GET("/swap/:id", h.getOperatorSwap)
		operator.PUT("/webhooks", h.addWebhook)
		operator.GET("/webhooks", h.listWebhooks)
		operator.DELETE("/webhooks/:id", h.removeWebhook)
	}

	return router
}

func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	log.Debugf(
		"http: %s %s %d %s",
		c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start),
	)
}
