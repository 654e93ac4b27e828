package chatHandler

import (
	"TemanCerita/internal/api/chat"
	contextPkg "TemanCerita/pkg/context"
	"TemanCerita/pkg/handlerUtil"
	"TemanCerita/pkg/log"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const requestTimeout = 15 * time.Second

func (h *ChatHandler) Chat(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req chat.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	sessionID := h.sessionKey(ctx, req.SessionID)
	c, cancel := context.WithTimeout(contextPkg.WithSessionID(contextPkg.FromFiberCtx(ctx), sessionID), h.timeout)
	defer cancel()

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": sessionID,
		"path":       ctx.Path(),
	}).Debug("Processing chat message")

	// A turn that returns without error is already saved, so its reply is
	// sent even when the deadline passed on the way out.
	result, err := h.chatService.ProcessMessage(c, sessionID, req.Message)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errHandler.HandleRequestTimeout(ctx)
		}
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "chat")
	}

	h.rememberSession(ctx, sessionID)

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, chat.ChatResponse{
		Response: result.Response,
	})
}

func (h *ChatHandler) ResetChat(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req chat.ResetRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}
		if err := h.validator.Struct(req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}
	}

	sessionID := h.sessionKey(ctx, req.SessionID)
	c, cancel := context.WithTimeout(contextPkg.WithSessionID(contextPkg.FromFiberCtx(ctx), sessionID), h.timeout)
	defer cancel()

	result, err := h.chatService.ResetSession(c, sessionID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errHandler.HandleRequestTimeout(ctx)
		}
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "reset_chat")
	}

	h.rememberSession(ctx, sessionID)

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, chat.ChatResponse{
		Response: result.Response,
	})
}
