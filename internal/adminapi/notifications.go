package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/internal/webserver"
)

type notificationPayload struct {
	UserID   *int64                       `json:"user_id"`
	Title    *string                      `json:"title" validate:"omitempty,max=200"`
	Message  *string                      `json:"message"`
	Category *domain.NotificationCategory `json:"category"`
}

func registerNotificationRoutes() {
	webserver.ApiGET("/notifications", listNotifications)
	webserver.ApiPOST("/notifications", createNotification)
	webserver.ApiPUT("/notifications/read-all", readAllNotifications)
	webserver.ApiPUT("/notifications/:id/read", readNotification)
	webserver.ApiDELETE("/notifications/:id", deleteNotification)
}

// listNotifications returns the caller's notifications and broadcasts, newest first
func listNotifications(c echo.Context) error {
	page, pageSize := parsePagination(c)
	auth := webserver.GetAuth(c)
	f := repository.NotificationFilter{
		UserID:     auth.UserID,
		UnreadOnly: queryBool(c, "unread", "nao_lidas"),
		Category:   domain.NotificationCategory(c.QueryParam("category")),
		Page:       page,
		PageSize:   pageSize,
	}
	if f.Category != "" && !f.Category.Valid() {
		return failErr(c, domain.ValidationError("invalid category %q", f.Category))
	}
	rows, total, err := repository.NewGormNotificationRepository(GetDB(c)).ListForUser(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

// createNotification posts a message to one user, or to everyone when user_id is absent
func createNotification(c echo.Context) error {
	var payload notificationPayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}
	if err := requireFields(raw, "title", "message"); err != nil {
		return failErr(c, err)
	}
	n := domain.Notification{
		UserID:   payload.UserID,
		Title:    strValue(payload.Title),
		Message:  strValue(payload.Message),
		Category: domain.CategorySystem,
	}
	if payload.Category != nil {
		n.Category = *payload.Category
	}
	ctx := c.Request().Context()
	db := GetDB(c)
	if n.UserID != nil {
		exists, err := repository.NewGormUserRepository(db).Exists(ctx, *n.UserID)
		if err != nil {
			return failErr(c, err)
		}
		if !exists {
			return failErr(c, domain.ValidationError("user %d does not exist", *n.UserID))
		}
	}
	id, err := repository.NewGormNotificationRepository(db).Create(ctx, &n)
	if err != nil {
		return failErr(c, err)
	}
	return created(c, id)
}

func readNotification(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "notification")
	}
	auth := webserver.GetAuth(c)
	if err := repository.NewGormNotificationRepository(GetDB(c)).MarkRead(c.Request().Context(), auth.UserID, id); err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"id": id, "read": true})
}

func readAllNotifications(c echo.Context) error {
	auth := webserver.GetAuth(c)
	n, err := repository.NewGormNotificationRepository(GetDB(c)).MarkAllRead(c.Request().Context(), auth.UserID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"updated": n})
}

func deleteNotification(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "notification")
	}
	auth := webserver.GetAuth(c)
	if err := repository.NewGormNotificationRepository(GetDB(c)).DeleteForUser(c.Request().Context(), auth.UserID, id); err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}
