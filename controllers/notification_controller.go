// File: /controllers/notification_controller.go
package controllers

import (
	"errors"
	"github.com/gin-gonic/gin"
	"net/http"
	"strconv"
	"tripcrew-api/services"
	"tripcrew-api/utils"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

func (nc *NotificationController) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notifications, total, err := nc.notifications.List(userID, page, limit)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}

	utils.SendPaginated(c, notifications, page, limit, total)
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID := c.GetString("user_id")
	notificationID := c.Param("id")

	if err := nc.notifications.MarkRead(userID, notificationID); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			utils.SendError(c, http.StatusNotFound, "Notification not found")
			return
		}
		utils.SendError(c, http.StatusInternalServerError, "Failed to mark notification as read")
		return
	}

	utils.SendSuccess(c, "Notification marked as read", nil)
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := nc.notifications.MarkAllRead(userID); err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to mark notifications as read")
		return
	}

	utils.SendSuccess(c, "All notifications marked as read", nil)
}

func (nc *NotificationController) GetStats(c *gin.Context) {
	userID := c.GetString("user_id")

	stats, err := nc.notifications.Stats(userID)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to fetch notification stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
