package api

import (
	"net/http"

	service "github.com/okian/matchclock/internal/app"
)

const defaultNotificationsLimit = 20

// NotificationDependencies serves recent notifications.
type NotificationDependencies interface {
	Notifications(n int) []service.Notification
}

// NotificationsHandler handles GET /notifications.
type NotificationsHandler struct {
	deps NotificationDependencies
}

func NewNotificationsHandler(deps NotificationDependencies) *NotificationsHandler {
	return &NotificationsHandler{deps: deps}
}

type notificationsResponse struct {
	Items []service.Notification `json:"items"`
}

// HandleGetNotifications handles GET /notifications?limit=n, oldest first.
func (h *NotificationsHandler) HandleGetNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := limitParam(r, defaultNotificationsLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind("notifications", ErrBadRequest, err))
		return
	}
	items := h.deps.Notifications(n)
	if items == nil {
		items = []service.Notification{}
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Items: items})
}
