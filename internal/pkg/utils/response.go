package utils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/route-reconstructor/internal/pkg/errors"
)

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error         *errors.AppError `json:"error"`
	Notifications []string         `json:"notifications,omitempty"`
}

type Meta struct {
	Total    int     `json:"total,omitempty"`
	TimeMSec float64 `json:"time_ms,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

// SendError отправляет AppError из цепочки ошибок вместе с уведомлениями сессии
func SendError(c *fiber.Ctx, err error, notifications ...string) error {
	if appErr, ok := errors.As(err); ok {
		status := appErr.StatusCode
		if status == 0 {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(ErrorResponse{
			Error:         appErr,
			Notifications: notifications,
		})
	}

	// Unknown error - return 500
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:         errors.ErrInternalServer,
		Notifications: notifications,
	})
}
