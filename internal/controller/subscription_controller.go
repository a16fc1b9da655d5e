package controller

import (
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/serverutils"
	"github.com/SpacksD/dulmar1-sub001/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router)
	ExpandSessions(ctx *fiber.Ctx) error
	ExpandAll(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type subscriptionController struct {
	service service.ISubscriptionService
}

func NewSubscriptionController(service service.ISubscriptionService) ISubscriptionController {
	return &subscriptionController{service: service}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router) {
	admin := r.Group("/admin", serverutils.JwtMiddleware, serverutils.AdminOnly)
	admin.Post("/subscriptions/:id/sessions", c.ExpandSessions)
	admin.Post("/subscriptions/:id/cancel", c.Cancel)
	admin.Post("/sessions/generate-all", c.ExpandAll)
}

func (c *subscriptionController) ExpandSessions(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid subscription id")
	}

	res, err := c.service.ExpandSessions(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Sessions generated", res))
}

func (c *subscriptionController) ExpandAll(ctx *fiber.Ctx) error {
	res, err := c.service.ExpandAll(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Sessions generated for active subscriptions", res))
}

func (c *subscriptionController) Cancel(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid subscription id")
	}

	res, err := c.service.CancelSubscription(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription cancelled", res))
}
