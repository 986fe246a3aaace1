package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-api/internal/core/ports"
)

type SupplierHandler struct {
	suppliers ports.SupplierService
}

func NewSupplierHandler(suppliers ports.SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

// @Summary      Create a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSupplierRequest  true  "Supplier"
// @Success      201   {object}  supplierResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/suppliers [post]
func (h *SupplierHandler) Create(c echo.Context) error {
	var req createSupplierRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.suppliers.Create(c.Request().Context(), ports.CreateSupplierInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, supplierResponse{Message: "Supplier created successfully.", Supplier: s})
}

// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Supplier
// @Router       /api/suppliers [get]
func (h *SupplierHandler) List(c echo.Context) error {
	sups, err := h.suppliers.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sups)
}

// @Summary      Get a supplier
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  domain.Supplier
// @Failure      404  {object}  errorResponse
// @Router       /api/suppliers/{id} [get]
func (h *SupplierHandler) Get(c echo.Context) error {
	s, err := h.suppliers.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// @Summary      Update a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Supplier ID"
// @Param        body  body      updateSupplierRequest  true  "Fields to change"
// @Success      200   {object}  supplierResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/suppliers/{id} [put]
func (h *SupplierHandler) Update(c echo.Context) error {
	var req updateSupplierRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.suppliers.Update(c.Request().Context(), c.Param("id"), ports.SupplierPatch{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, supplierResponse{Message: "Supplier updated successfully.", Supplier: s})
}

// @Summary      Delete a supplier
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c echo.Context) error {
	if err := h.suppliers.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Supplier deleted successfully."})
}
