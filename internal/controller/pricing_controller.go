package controller

import (
	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/serverutils"
	"github.com/SpacksD/dulmar1-sub001/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPricingController interface {
	RegisterRoutes(r fiber.Router)
	Quote(ctx *fiber.Ctx) error
}

type pricingController struct {
	service service.IPricingService
}

func NewPricingController(service service.IPricingService) IPricingController {
	return &pricingController{service: service}
}

func (c *pricingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pricing")
	h.Post("/quote", c.Quote)
}

func (c *pricingController) Quote(ctx *fiber.Ctx) error {
	var req dto.QuoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Quote(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Quote calculated", res))
}
