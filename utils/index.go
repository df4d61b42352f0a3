package utils

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	var errMsg interface{}
	if err != nil {
		errMsg = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   errMsg,
	})
}

func SuccessResponse(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

var kindStatus = map[apperror.Kind]int{
	apperror.KindNotFound:           fiber.StatusNotFound,
	apperror.KindInvalidInput:       fiber.StatusBadRequest,
	apperror.KindSeatConflict:       fiber.StatusConflict,
	apperror.KindInvalidTransition:  fiber.StatusConflict,
	apperror.KindInvalidState:       fiber.StatusConflict,
	apperror.KindUnauthorized:       fiber.StatusForbidden,
	apperror.KindInvalidSignature:   fiber.StatusBadRequest,
	apperror.KindUnsupportedGateway: fiber.StatusBadRequest,
	apperror.KindConfiguration:      fiber.StatusInternalServerError,
	apperror.KindInternal:           fiber.StatusInternalServerError,
}

// StatusOf maps an error to the HTTP status clients see.
func StatusOf(err error) int {
	if status, ok := kindStatus[apperror.KindOf(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// HandleError writes the client-safe message of err. Server-side failures are
// logged with their cause and answered with a generic message.
func HandleError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := StatusOf(err)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(status).JSON(fiber.Map{
			"message": constants.ERROR_INTERNAL_ERROR,
			"error":   string(apperror.KindOf(err)),
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"message": apperror.Message(err),
		"error":   string(apperror.KindOf(err)),
	})
}

// TranslateDBError turns gorm errors into apperror kinds. what names the
// record for NotFound messages.
func TranslateDBError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.New(apperror.KindNotFound, "%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Wrap(apperror.KindInvalidInput, err, "%s already exists", what)
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(apperror.KindInternal, err, "database error")
}

func ApplyPagination(query *gorm.DB, limit, page *int) *gorm.DB {
	// Kiểm tra nếu có limit thì thêm điều kiện Limit
	if limit != nil && *limit > 0 && page != nil && *page >= 1 {
		query = query.Limit(*limit)
		offset := *limit * (*page - 1)
		query = query.Offset(offset)
	}

	return query
}
