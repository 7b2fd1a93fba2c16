package httpinterface

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/swapdex/swapd/internal/core/application/orderbook"
	"github.com/swapdex/swapd/internal/core/application/pubsub"
	"github.com/swapdex/swapd/internal/core/application/relay"
	"github.com/swapdex/swapd/internal/core/application/swap"
	"github.com/swapdex/swapd/internal/core/domain"
)

type handler struct {
	orderbookSvc *orderbook.Service
	swapSvc      *swap.Service
	relaySvc     *relay.Service
	pubsubSvc    *pubsub.Service
	validator    *validator.Validate
}

func newHandler(
	orderbookSvc *orderbook.Service, swapSvc *swap.Service,
	relaySvc *relay.Service, pubsubSvc *pubsub.Service,
) *handler {
	return &handler{
		orderbookSvc: orderbookSvc,
		swapSvc:      swapSvc,
		relaySvc:     relaySvc,
		pubsubSvc:    pubsubSvc,
		validator:    validator.New(),
	}
}

// bind decodes and validates the JSON body of the request into req. It
// writes the error response and returns false on failure.
func (h *handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid request",
			"validation_errors": formatValidationError(err),
		})
		return false
	}
	return true
}

// PUT /orderbook/limit
func (h *handler) addLimitOrder(c *gin.Context) {
	var req addLimitOrderRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.orderbookSvc.AddLimitOrder(
		c.Request.Context(), req.toDomain(callerUid(c)),
	)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAddLimitOrderResponse(res))
}

// DELETE /orderbook/limit
func (h *handler) cancelLimitOrder(c *gin.Context) {
	var req cancelLimitOrderRequest
	if !h.bind(c, &req) {
		return
	}

	// Operators can cancel orders of anyone.
	uid := callerUid(c)
	if isOperator(c) {
		uid = ""
	}
	order, err := h.orderbookSvc.CancelLimitOrder(
		c.Request.Context(), uid, req.ID, req.BaseAsset, req.QuoteAsset,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": newOrderInfo(*order)})
}

// GET /orderbook?market=BASE@network/QUOTE@network
func (h *handler) getOrderBook(c *gin.Context) {
	name := c.Query("market")
	if name == "" {
		markets := h.orderbookSvc.ListMarkets(c.Request.Context())
		list := make([]marketInfo, 0, len(markets))
		for _, m := range markets {
			list = append(list, marketInfo{
				Market: m.Market.String(),
				Bids:   m.Bids,
				Asks:   m.Asks,
			})
		}
		c.JSON(http.StatusOK, gin.H{"markets": list})
		return
	}

	market, err := domain.ParseMarket(name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	bids, asks, err := h.orderbookSvc.GetOrderBook(c.Request.Context(), market)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderBookResponse{
		Market: market.String(),
		Bids:   newOrderInfoList(bids),
		Asks:   newOrderInfoList(asks),
	})
}

// GET /orders
func (h *handler) listOrders(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	uid := callerUid(c)
	closed, err := h.orderbookSvc.ListClosedOrders(ctx, uid, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	closedList := make([]orderInfo, 0, len(closed))
	for _, o := range closed {
		closedList = append(closedList, newClosedOrderInfo(o))
	}
	c.JSON(http.StatusOK, listOrdersResponse{
		Open:   newOrderInfoList(h.orderbookSvc.ListOpenOrders(ctx, uid)),
		Closed: closedList,
	})
}

// PUT /swap
func (h *handler) openSwap(c *gin.Context) {
	var req openSwapRequest
	if !h.bind(c, &req) {
		return
	}

	ack, err := h.swapSvc.Open(
		c.Request.Context(), req.ID, callerUid(c), req.PublicInfo, req.SecretHash,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAckResponse(ack))
}

// POST /swap
func (h *handler) commitSwap(c *gin.Context) {
	var req commitSwapRequest
	if !h.bind(c, &req) {
		return
	}

	ack, err := h.swapSvc.Commit(
		c.Request.Context(), req.ID, callerUid(c), req.Confirmation, req.Secret,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAckResponse(ack))
}

// DELETE /swap/:id
func (h *handler) abortSwap(c *gin.Context) {
	ack, err := h.swapSvc.Abort(c.Request.Context(), c.Param("id"), callerUid(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAckResponse(ack))
}

// GET /swap/:id
func (h *handler) getSwap(c *gin.Context) {
	h.getSwapAs(c, callerUid(c))
}

// GET /operator/swap/:id
func (h *handler) getOperatorSwap(c *gin.Context) {
	h.getSwapAs(c, "")
}

func (h *handler) getSwapAs(c *gin.Context, uid string) {
	view, err := h.swapSvc.GetSession(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /swaps
func (h *handler) listSwaps(c *gin.Context) {
	h.listSwapsOf(c, callerUid(c))
}

// GET /operator/swaps
func (h *handler) listOperatorSwaps(c *gin.Context) {
	h.listSwapsOf(c, "")
}

func (h *handler) listSwapsOf(c *gin.Context, uid string) {
	page, ok := parsePage(c)
	if !ok {
		return
	}

	views, err := h.swapSvc.ListSessions(c.Request.Context(), uid, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listSwapsResponse{views})
}

// GET /updates
func (h *handler) updates(c *gin.Context) {
	uid := callerUid(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Debugf("http: failed to upgrade connection of %s", uid)
		return
	}

	channel := newConnection(uid, conn)
	h.relaySvc.Register(uid, channel)

	go channel.writePump()
	go func() {
		channel.readPump()
		h.relaySvc.UnregisterChannel(uid, channel.Id())
	}()
}

// PUT /operator/webhooks
func (h *handler) addWebhook(c *gin.Context) {
	if !h.pubsubEnabled(c) {
		return
	}
	var req addWebhookRequest
	if !h.bind(c, &req) {
		return
	}

	id, err := h.pubsubSvc.AddWebhook(
		c.Request.Context(), req.Event, req.Endpoint, req.Secret,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// GET /operator/webhooks?event=
func (h *handler) listWebhooks(c *gin.Context) {
	if !h.pubsubEnabled(c) {
		return
	}

	webhooks, err := h.pubsubSvc.ListWebhooks(c.Request.Context(), c.Query("event"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": webhooks})
}

// DELETE /operator/webhooks/:id
func (h *handler) removeWebhook(c *gin.Context) {
	if !h.pubsubEnabled(c) {
		return
	}

	if err := h.pubsubSvc.RemoveWebhook(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *handler) pubsubEnabled(c *gin.Context) bool {
	if h.pubsubSvc == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "webhooks are disabled"})
		return false
	}
	return true
}

// parsePage reads the optional page and size query params. No pagination is
// applied if both are missing.
func parsePage(c *gin.Context) (domain.Page, bool) {
	pageStr, sizeStr := c.Query("page"), c.Query("size")
	if pageStr == "" && sizeStr == "" {
		return domain.Page{}, true
	}

	var page, size int
	var err error
	if pageStr != "" {
		if page, err = strconv.Atoi(pageStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a number"})
			return domain.Page{}, false
		}
	}
	if sizeStr != "" {
		if size, err = strconv.Atoi(sizeStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a number"})
			return domain.Page{}, false
		}
	}
	return domain.NewPage(page, size), true
}
