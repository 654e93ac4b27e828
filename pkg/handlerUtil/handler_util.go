package handlerUtil

import (
	"TemanCerita/internal/api/chat"
	"TemanCerita/pkg/log"
	"TemanCerita/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	serverErrorText = "Maaf, terjadi kesalahan pada server. Coba lagi nanti ya."
	timeoutText     = "Maaf, permintaanmu terlalu lama diproses. Coba lagi ya."
	tooManyText     = "Pelan-pelan ya, kamu mengirim terlalu banyak pesan."
	notFoundText    = "Sesi obrolan tidak ditemukan."
)

// ErrorResponse is the body of every non-2xx reply. It shares its shape with
// a successful chat reply so clients read one field.
type ErrorResponse struct {
	Response string `json:"response"`
	TraceID  string `json:"trace_id,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrInvalidPayload) {
		h.logger.WithFields(fields).Warn("Empty or invalid chat message")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Response: chat.EmptyMessageText})
	}

	if errors.Is(err, chat.ErrSessionNotFound) {
		h.logger.WithFields(fields).Warn("Chat session not found")
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Response: notFoundText})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) && respErr.Code < fiber.StatusInternalServerError {
		fields["code"] = respErr.Code
		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(ErrorResponse{Response: respErr.UserMessage()})
	}

	code := fiber.StatusInternalServerError
	if respErr != nil {
		code = respErr.Code
	}

	h.logger.WithFields(fields).Error("Unexpected error")

	return c.Status(code).JSON(ErrorResponse{
		Response: serverErrorText,
		TraceID:  requestID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Response: chat.EmptyMessageText})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{Response: timeoutText})
}

func (h *ErrorHandler) HandleTooManyRequests(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Response: tooManyText})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
