package handler

import (
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/serverutils"
	"github.com/SpacksD/dulmar1-sub001/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// NotificationHandler serves the parent's notification inbox.
type NotificationHandler struct {
	service service.INotificationService
	logger  logger.ILogger
}

func NewNotificationHandler(service service.INotificationService, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  log,
	}
}

// GetNotifications returns one page of the caller's notifications, newest first.
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID := serverutils.CurrentUserID(c)

	res, err := h.service.GetNotifications(c.UserContext(), userID, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse("Success fetching notifications", res))
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid ID"))
	}

	if err := h.service.MarkAsRead(c.UserContext(), id, serverutils.CurrentUserID(c)); err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse[any]("Notification marked as read", nil))
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID := serverutils.CurrentUserID(c)
	if err := h.service.MarkAllAsRead(c.UserContext(), userID); err != nil {
		h.logger.Error("NOTIFY", "Failed to mark all as read", map[string]interface{}{
			"userId": userID.String(),
			"error":  err.Error(),
		})
		return err
	}
	return c.JSON(serverutils.SuccessResponse[any]("All notifications marked as read", nil))
}

// RegisterRoutes registers the notification routes.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notif := router.Group("/notifications")
	notif.Use(serverutils.JwtMiddleware)
	notif.Get("/", h.GetNotifications)
	notif.Patch("/read-all", h.MarkAllAsRead)
	notif.Patch("/:id/read", h.MarkAsRead)
}
