package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ViduraMC/Bakery-App/internal/payment"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"

type OrderHandler struct {
	ledger  *usecase.OrderLedger
	queries *usecase.OrderQueries
	timeout time.Duration
}

func NewOrderHandler(ledger *usecase.OrderLedger, queries *usecase.OrderQueries) *OrderHandler {
	return &OrderHandler{ledger: ledger, queries: queries, timeout: 5 * time.Second}
}

type orderItemReq struct {
	ProductID string           `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	Price     *decimal.Decimal `json:"price"`
}

type createOrderReq struct {
	CustomerName   string            `json:"customer_name" binding:"required"`
	CustomerEmail  string            `json:"customer_email" binding:"required,email"`
	Items          []orderItemReq    `json:"items" binding:"required,min=1,dive"`
	TotalAmount    *decimal.Decimal  `json:"total_amount"`
	PaymentDetails map[string]string `json:"payment_details"`
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required,order_status"`
}

// CreateOrder handler: translate to use case input
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	in := usecase.CreateOrderInput{
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		IdempotencyKey: c.GetHeader(HeaderIdempotencyKey), // prevent duplicated requests
		Items:          make([]usecase.CreateOrderItem, len(req.Items)),
		TotalAmount:    req.TotalAmount,
		PaymentDetails: payment.Details(req.PaymentDetails),
	}
	for i, it := range req.Items {
		in.Items[i] = usecase.CreateOrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	order, err := h.ledger.CreateOrder(ctx, in)
	if err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	orders, err := h.queries.ListOrders(ctx)
	if err != nil {
		writeError(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	order, err := h.queries.GetOrder(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	st, err := h.queries.GetOrderStatus(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	st, err := h.ledger.UpdateOrderStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, st)
}
