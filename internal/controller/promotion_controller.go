package controller

import (
	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/serverutils"
	"github.com/SpacksD/dulmar1-sub001/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPromotionController interface {
	RegisterRoutes(r fiber.Router)
	Check(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
}

type promotionController struct {
	service service.IPromotionService
}

func NewPromotionController(service service.IPromotionService) IPromotionController {
	return &promotionController{service: service}
}

func (c *promotionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/promotions")
	h.Post("/check", c.Check)

	admin := r.Group("/admin/promotions", serverutils.JwtMiddleware, serverutils.AdminOnly)
	admin.Post("/", c.Create)
}

// Check previews a promo code. An ineligible code is a 200 with valid=false.
func (c *promotionController) Check(ctx *fiber.Ctx) error {
	var req dto.CheckPromotionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CheckPromotion(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Promotion checked", res))
}

func (c *promotionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreatePromotionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreatePromotion(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Promotion created", res))
}
