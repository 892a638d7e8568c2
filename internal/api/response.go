package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// RestErrorResponseModel is the body of every failed request.
type RestErrorResponseModel struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Code    int               `json:"code"`
}

// RestCollectionResponseModel wraps list results.
type RestCollectionResponseModel struct {
	Kind      string `json:"kind"`
	Contents  any    `json:"contents"`
	TotalRows int    `json:"total_rows"`
}

func restSuccess(c *fiber.Ctx, code int, in any) error {
	return c.Status(code).JSON(in)
}

func restCollection(c *fiber.Ctx, contents any, total int) error {
	return c.Status(fiber.StatusOK).JSON(RestCollectionResponseModel{
		Kind:      "collection",
		Contents:  contents,
		TotalRows: total,
	})
}

func restError(c *fiber.Ctx, code int, err error) error {
	return c.Status(code).JSON(RestErrorResponseModel{
		Status:  "error",
		Code:    code,
		Message: err.Error(),
	})
}

// validationError lists the request fields that failed their tags.
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string {
	return "request validation failed"
}

// parseBody decodes and validates a JSON request body into req. The
// returned error is rendered by errorHandler.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		verr := &validationError{fields: map[string]string{}}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				verr.fields[fe.Field()] = fe.Tag()
			}
		}
		return verr
	}
	return nil
}

// errorHandler renders errors that escape handlers, fiber's own included.
func errorHandler(c *fiber.Ctx, err error) error {
	var verr *validationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(RestErrorResponseModel{
			Status:  "error",
			Code:    fiber.StatusUnprocessableEntity,
			Message: verr.Error(),
			Fields:  verr.fields,
		})
	}

	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return restError(c, code, err)
}
