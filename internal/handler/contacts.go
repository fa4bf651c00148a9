package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/service"
)

type ContactHandler struct {
	Contacts *service.ContactService
	Log      *zap.Logger
}

func NewContactHandler(s *service.ContactService, log *zap.Logger) *ContactHandler {
	return &ContactHandler{Contacts: s, Log: log}
}

type contactReq struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}

type replyReq struct {
	Response string `json:"response" validate:"required"`
}

type statusReq struct {
	Status string `json:"status" validate:"required"`
}

// Create accepts a message from the public contact form.
func (h *ContactHandler) Create(c echo.Context) error {
	var req contactReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	msg, err := h.Contacts.Create(ctx, service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *ContactHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	msgs, err := h.Contacts.List(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *ContactHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	msg, err := h.Contacts.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *ContactHandler) Reply(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	var req replyReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	msg, err := h.Contacts.Reply(ctx, id, req.Response)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *ContactHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	var req statusReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	msg, err := h.Contacts.SetStatus(ctx, id, req.Status)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *ContactHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Contacts.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
