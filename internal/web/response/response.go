// Package response writes the JSON envelopes returned by the API.
package response

import (
	"github.com/gofiber/fiber/v2"
)

// Error codes carried in the "error" field of failed responses.
const (
	CodeUnauthorized       = "Unauthorized"
	CodeAccountDeactivated = "AccountDeactivated"
	CodeForbidden          = "Forbidden"
	CodeValidation         = "ValidationError"
	CodeNotFound           = "NotFound"
	CodeBadRequest         = "BadRequest"
	CodeInternal           = "InternalServerError"
)

// Failure is the body of every failed API response.
type Failure struct {
	OK                  bool     `json:"ok"`
	Error               string   `json:"error"`
	Message             string   `json:"message"`
	RequiredPermissions []string `json:"requiredPermissions,omitempty"`
	Fields              []string `json:"fields,omitempty"`
}

// Success is the body of successful API responses that carry a single payload.
type Success struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

// OK writes {ok:true, data} with status 200.
func OK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Success{OK: true, Data: data})
}

// Created writes {ok:true, data} with status 201.
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Success{OK: true, Data: data})
}

// Fail writes a failure envelope with the given status.
func Fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Failure{Error: code, Message: message})
}

// Forbidden writes a 403 listing the permissions that would have allowed the request.
func Forbidden(c *fiber.Ctx, message string, required []string) error {
	return c.Status(fiber.StatusForbidden).JSON(Failure{
		Error:               CodeForbidden,
		Message:             message,
		RequiredPermissions: required,
	})
}

// Invalid writes a 400 validation failure naming the offending values.
func Invalid(c *fiber.Ctx, message string, fields []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Failure{
		Error:   CodeValidation,
		Message: message,
		Fields:  fields,
	})
}
