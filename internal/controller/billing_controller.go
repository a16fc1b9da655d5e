package controller

import (
	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/serverutils"
	"github.com/SpacksD/dulmar1-sub001/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBillingController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	GetRun(ctx *fiber.Ctx) error
	MarkOverdue(ctx *fiber.Ctx) error
}

type billingController struct {
	service service.IBillingService
}

func NewBillingController(service service.IBillingService) IBillingController {
	return &billingController{service: service}
}

func (c *billingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/billing", serverutils.JwtMiddleware, serverutils.AdminOnly)
	h.Post("/generate", c.Generate)
	h.Post("/overdue", c.MarkOverdue)
	h.Get("/runs/:year/:month", c.GetRun)
}

func (c *billingController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateBillingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	summary, err := c.service.GenerateInvoices(ctx.UserContext(), req.Month, req.Year)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Billing run finished", summary))
}

func (c *billingController) GetRun(ctx *fiber.Ctx) error {
	year, err := ctx.ParamsInt("year")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid year")
	}
	month, err := ctx.ParamsInt("month")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid month")
	}

	summary, err := c.service.GetRun(ctx.UserContext(), month, year)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Billing run", summary))
}

func (c *billingController) MarkOverdue(ctx *fiber.Ctx) error {
	res, err := c.service.MarkOverdue(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Overdue invoices marked", res))
}
