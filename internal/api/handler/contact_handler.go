package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vermahardware/storefront/internal/core/ports"
)

// ContactHandler handles the contact form and its administrative views.
type ContactHandler struct {
	contacts ports.ContactService
}

func NewContactHandler(contacts ports.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Submit handles POST /contacts.
//
// @Summary      Submit a contact inquiry
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        body  body      contactRequest  true  "Inquiry"
// @Success      201   {object}  domain.Contact
// @Failure      400   {object}  errorResponse
// @Router       /contacts [post]
func (h *ContactHandler) Submit(c echo.Context) error {
	var req contactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	contact, err := h.contacts.Submit(c.Request().Context(), ports.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, contact)
}

// List handles GET /contacts.
//
// @Summary      List contact inquiries, newest first
// @Tags         contacts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  contactListResponse
// @Failure      403  {object}  errorResponse
// @Router       /contacts [get]
func (h *ContactHandler) List(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	contacts, err := h.contacts.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contactListResponse{Contacts: contacts, Total: len(contacts)})
}

// Export handles GET /contacts/export and streams the inquiries as CSV.
//
// @Summary      Export contact inquiries as CSV
// @Tags         contacts
// @Produce      text/csv
// @Security     BearerAuth
// @Param        header  query  string  false  "Header style: fields (default) or display"  Enums(fields, display)
// @Success      200
// @Failure      403  {object}  errorResponse
// @Router       /contacts/export [get]
func (h *ContactHandler) Export(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	opts := ports.ExportOptions{DisplayHeader: c.QueryParam("header") == "display"}

	// Buffered so a backend failure can still be reported as a JSON error.
	var buf bytes.Buffer
	filename, err := h.contacts.Export(c.Request().Context(), actor, &buf, opts)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Delete handles DELETE /contacts/:id.
//
// @Summary      Delete a contact inquiry
// @Tags         contacts
// @Security     BearerAuth
// @Param        id   path  string  true  "Contact id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /contacts/{id} [delete]
func (h *ContactHandler) Delete(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.contacts.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
