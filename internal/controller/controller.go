package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"fabmarket/internal/models"
)

type Service interface {
	CreateOrder(ctx context.Context, ownerId string, draft models.Order) (models.Order, error)
	GetOrders(ctx context.Context, limit, offset int, kind models.OrderKind, status models.OrderStatus) ([]models.Order, error)
	GetUserOrders(ctx context.Context, ownerId string, limit, offset int) ([]models.Order, error)
	GetAcceptedOrders(ctx context.Context, providerId string, limit, offset int) ([]models.Order, error)
	GetOrder(ctx context.Context, orderId string) (models.Order, error)

	SubmitBid(ctx context.Context, orderId, bidder string, amount float64) (models.Bid, error)
	AcceptOrder(ctx context.Context, orderId, providerId string) (models.Order, error)
	ReviewOrder(ctx context.Context, orderId string, status models.OrderStatus) (models.Order, error)
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

//// Orders

// POST /api/orders/new
func (c *Controller) NewOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.actorId(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewOrderReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := c.service.CreateOrder(r.Context(), actor, models.Order{
		Kind:               req.Kind,
		Product:            req.Product,
		Labor:              req.Labor,
		StartPrice:         req.StartPrice,
		MaxPrice:           req.MaxPrice,
		AuctionDurationMin: req.AuctionDurationMin,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, order)
}

// GET /api/orders
func (c *Controller) GetOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := c.getQueryInt(query, "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return
	}

	offset, err := c.getQueryInt(query, "offset")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return
	}

	kind := models.OrderKind(query.Get("kind"))
	if len(kind) > 0 && !models.ValidOrderKind(kind) {
		c.errorResponse(w, http.StatusBadRequest, "invalid order kind supplied: "+string(kind))
		return
	}

	status := models.OrderStatus(query.Get("status"))
	if len(status) > 0 && !models.ValidOrderStatus(status) {
		c.errorResponse(w, http.StatusBadRequest, "invalid order status supplied: "+string(status))
		return
	}

	orders, err := c.service.GetOrders(r.Context(), limit, offset, kind, status)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, orders)
}

// GET /api/orders/my
func (c *Controller) MyOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.actorId(w, r)
	if !ok {
		return
	}

	limit, offset, ok := c.pageParams(w, r)
	if !ok {
		return
	}

	orders, err := c.service.GetUserOrders(r.Context(), actor, limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, orders)
}

// GET /api/orders/accepted
func (c *Controller) AcceptedOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.actorId(w, r)
	if !ok {
		return
	}

	limit, offset, ok := c.pageParams(w, r)
	if !ok {
		return
	}

	orders, err := c.service.GetAcceptedOrders(r.Context(), actor, limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, orders)
}

// GET /api/orders/{orderId}
func (c *Controller) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderId := r.PathValue("orderId")
	if len(orderId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty orderId supplied")
		return
	}

	order, err := c.service.GetOrder(r.Context(), orderId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, order)
}

//// Bidding

// POST /api/orders/{orderId}/bids
func (c *Controller) NewBid(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.actorId(w, r)
	if !ok {
		return
	}

	orderId := r.PathValue("orderId")
	if len(orderId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty orderId supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	amount, err := ParseNewBidReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	bid, err := c.service.SubmitBid(r.Context(), orderId, actor, amount)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, bid)
}

// POST /api/orders/{orderId}/accept
func (c *Controller) AcceptOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.actorId(w, r)
	if !ok {
		return
	}

	orderId := r.PathValue("orderId")
	if len(orderId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty orderId supplied")
		return
	}

	order, err := c.service.AcceptOrder(r.Context(), orderId, actor)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, order)
}

//// Review

// PUT /api/orders/{orderId}/status
func (c *Controller) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	_, ok := c.actorId(w, r)
	if !ok {
		return
	}

	orderId := r.PathValue("orderId")
	if len(orderId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty orderId supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	status, err := ParseSetStatusReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := c.service.ReviewOrder(r.Context(), orderId, status)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, order)
}

// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

// actorId extracts the pre-authenticated caller identity. Authentication
// itself happens upstream; an empty header means the request never passed it.
func (c *Controller) actorId(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor := r.Header.Get("X-User-Id")
	if len(actor) == 0 {
		c.errorResponse(w, http.StatusUnauthorized, "missing X-User-Id header")
		return "", false
	}
	return actor, true
}

func (c *Controller) pageParams(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	query := r.URL.Query()

	limit, err := c.getQueryInt(query, "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return 0, 0, false
	}

	offset, err = c.getQueryInt(query, "offset")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return 0, 0, false
	}

	return limit, offset, true
}

func (c *Controller) getQueryInt(query url.Values, key string) (int, error) {
	strs, ok := query[key]
	if ok && len(strs) > 0 {
		return strconv.Atoi(strs[0])
	}
	return 0, nil
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}

	_, err = w.Write(data)
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidOrder):
		c.errorResponse(w, http.StatusBadRequest, "order fields are missing or malformed")
	case errors.Is(err, models.ErrInvalidAmount):
		c.errorResponse(w, http.StatusBadRequest, "bid amount must be a positive number")
	case errors.Is(err, models.ErrForbidden):
		c.errorResponse(w, http.StatusForbidden, "user have no permission for requested action")
	case errors.Is(err, models.ErrAuctionClosed):
		c.errorResponse(w, http.StatusForbidden, "auction for requested order has already finished, bid cannot be placed")
	case errors.Is(err, models.ErrAlreadyResolved):
		c.errorResponse(w, http.StatusForbidden, "requested order has already been accepted or closed")
	case errors.Is(err, models.ErrInvalidStatus):
		c.errorResponse(w, http.StatusForbidden, "requested status change is not allowed for this order")
	case errors.Is(err, models.ErrNoOrder):
		c.errorResponse(w, http.StatusNotFound, "requested order does not exist or unacessible")
	default:
		log.Println("controller:", err)
		c.errorResponse(w, http.StatusInternalServerError, "internal server error: "+err.Error())
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marhsal response data")
		return
	}

	_, err = w.Write(d)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not write response data")
		return
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	defer src.Close()
	return io.ReadAll(src)
}
