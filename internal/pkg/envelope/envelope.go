// Package envelope wraps admin API payloads in the common response shape.
package envelope

import (
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/gateway-admin/internal/pkg/bininfo"
)

type Meta struct {
	Version    string `json:"version"`
	StatusCode int    `json:"status_code"`
}

type Envelope struct {
	Meta    Meta `json:"meta"`
	Results any  `json:"results"`
}

func NewMeta(statusCode int) Meta {
	return Meta{
		Version:    bininfo.Version,
		StatusCode: statusCode,
	}
}

func New(statusCode int, results any) *Envelope {
	return &Envelope{
		Meta:    NewMeta(statusCode),
		Results: results,
	}
}

func Send(ctx *fiber.Ctx, statusCode int, results any) error {
	return ctx.Status(statusCode).JSON(New(statusCode, results))
}

func OK(ctx *fiber.Ctx, results any) error {
	return Send(ctx, fiber.StatusOK, results)
}

func Created(ctx *fiber.Ctx, results any) error {
	return Send(ctx, fiber.StatusCreated, results)
}
