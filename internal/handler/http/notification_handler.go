package http

import (
	"net/http"

	"rocketshoes-cart/internal/notifier"
)

type NotificationHandler struct {
	feed *notifier.Feed
}

func NewNotificationHandler(feed *notifier.Feed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feed.Recent())
}
