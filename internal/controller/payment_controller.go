package controller

import (
	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/serverutils"
	"github.com/SpacksD/dulmar1-sub001/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	Reject(ctx *fiber.Ctx) error
	Resume(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
}

func NewPaymentController(service service.IPaymentService) IPaymentController {
	return &paymentController{service: service}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payments", serverutils.JwtMiddleware)
	h.Post("/", c.Submit)

	admin := r.Group("/admin/payments", serverutils.JwtMiddleware, serverutils.AdminOnly)
	admin.Post("/:id/confirm", c.Confirm)
	admin.Post("/:id/reject", c.Reject)
	admin.Post("/:id/resume", c.Resume)
}

func (c *paymentController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitPaymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SubmitPayment(ctx.UserContext(), serverutils.CurrentUserID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Payment submitted for review", res))
}

func (c *paymentController) review(ctx *fiber.Ctx) (uuid.UUID, *dto.ReviewPaymentRequest, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, nil, fiber.NewError(fiber.StatusBadRequest, "Invalid payment id")
	}

	var req dto.ReviewPaymentRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return uuid.Nil, nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return uuid.Nil, nil, err
	}
	return id, &req, nil
}

// Confirm returns 200 even when a cascade step failed; the outcome lists
// the failed steps and POST /resume retries them.
func (c *paymentController) Confirm(ctx *fiber.Ctx) error {
	id, req, err := c.review(ctx)
	if err != nil {
		return err
	}

	outcome, err := c.service.ConfirmPayment(ctx.UserContext(), id, serverutils.CurrentUserID(ctx), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment confirmed", outcome))
}

func (c *paymentController) Reject(ctx *fiber.Ctx) error {
	id, req, err := c.review(ctx)
	if err != nil {
		return err
	}

	outcome, err := c.service.RejectPayment(ctx.UserContext(), id, serverutils.CurrentUserID(ctx), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment rejected", outcome))
}

func (c *paymentController) Resume(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payment id")
	}

	outcome, err := c.service.ResumeCascade(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Confirmation cascade resumed", outcome))
}
