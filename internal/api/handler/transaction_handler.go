package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-api/internal/api/metrics"
	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry a transaction without moving
// stock twice.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 255

type TransactionHandler struct {
	transactions ports.TransactionService
}

func NewTransactionHandler(transactions ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// Create records a stock movement and adjusts the product's stock.
//
// A request repeating a completed Idempotency-Key returns the original
// transaction with 200 instead of 201.
//
// @Summary      Record an inventory transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                    false  "Client request key"
// @Param        body             body      createTransactionRequest  true   "Transaction"
// @Success      201              {object}  transactionResponse
// @Success      200              {object}  transactionResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	var req createTransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	key := c.Request().Header.Get(HeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return domain.NewValidationError("%s must be at most %d characters", HeaderIdempotencyKey, maxIdempotencyKeyLen)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}

	res, err := h.transactions.Record(c.Request().Context(), ports.RecordTransactionInput{
		ProductID:      req.ProductID,
		Type:           req.Type,
		Quantity:       req.Quantity,
		Date:           date,
		Notes:          req.Notes,
		IdempotencyKey: key,
	})
	if err != nil {
		metrics.TransactionFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		return err
	}

	if res.Replayed {
		metrics.IdempotentReplaysTotal.Inc()
		return c.JSON(http.StatusOK, transactionResponse{Message: "Transaction already recorded.", Transaction: res.Transaction})
	}

	t := res.Transaction
	metrics.TransactionsRecordedTotal.WithLabelValues(string(t.Type)).Inc()
	metrics.StockUnitsMovedTotal.WithLabelValues(string(t.Type)).Add(float64(t.Quantity))
	return c.JSON(http.StatusCreated, transactionResponse{Message: "Transaction created successfully.", Transaction: t})
}

// List returns all transactions, newest first, with their products.
//
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  transactionView
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c echo.Context) error {
	details, err := h.transactions.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]transactionView, len(details))
	for i, d := range details {
		out[i] = transactionView{Transaction: d.Transaction, Product: d.Product}
	}
	return c.JSON(http.StatusOK, out)
}

// @Summary      Get a transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  transactionView
// @Failure      404  {object}  errorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) Get(c echo.Context) error {
	d, err := h.transactions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transactionView{Transaction: d.Transaction, Product: d.Product})
}

// Update changes a transaction and moves stock by the difference.
//
// @Summary      Update a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Transaction ID"
// @Param        body  body      updateTransactionRequest  true  "Fields to change"
// @Success      200   {object}  transactionResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/transactions/{id} [put]
func (h *TransactionHandler) Update(c echo.Context) error {
	var req updateTransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	patch := ports.TransactionPatch{Quantity: req.Quantity, Notes: req.Notes}
	if req.Type != nil {
		typ := domain.TransactionType(*req.Type)
		patch.Type = &typ
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return err
		}
		patch.Date = &date
	}

	t, err := h.transactions.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		metrics.TransactionFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		return err
	}
	return c.JSON(http.StatusOK, transactionResponse{Message: "Transaction updated successfully.", Transaction: t})
}

// Delete removes a transaction and reverses its stock movement.
//
// @Summary      Delete a transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c echo.Context) error {
	if err := h.transactions.Delete(c.Request().Context(), c.Param("id")); err != nil {
		metrics.TransactionFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Transaction deleted successfully."})
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return "duplicate_request"
	default:
		return "store"
	}
}
