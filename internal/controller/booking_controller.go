package controller

import (
	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/serverutils"
	"github.com/SpacksD/dulmar1-sub001/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IBookingController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type bookingController struct {
	service service.IBookingService
}

func NewBookingController(service service.IBookingService) IBookingController {
	return &bookingController{service: service}
}

func (c *bookingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/bookings", serverutils.JwtMiddleware)
	h.Post("/", c.Create)
	h.Delete("/:id", c.Delete)
}

func (c *bookingController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateBookingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateBooking(ctx.UserContext(), serverutils.CurrentUserID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Booking created", res))
}

func (c *bookingController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid booking id")
	}

	if err := c.service.DeleteBooking(ctx.UserContext(), serverutils.CurrentUserID(ctx), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Booking withdrawn", nil))
}
