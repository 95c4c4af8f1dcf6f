package handlers

import (
	"net/http"
	"strconv"

	"ai.lyftr.inbox/internal/messagestore"
	"ai.lyftr.inbox/internal/model"
	"github.com/labstack/echo/v4"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type MessageStore interface {
	List(limit int, offset int, filters messagestore.Filters) ([]model.Message, int)
	Stats() *model.Stats
	Ping() bool
}

type MessageListResponse struct {
	Data   []model.Message `json:"data"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ListMessages serves one page of stored messages. The store requires a
// limit in [1,100] and a non-negative offset, so both are clamped here.
func ListMessages(store MessageStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := intParam(c, "limit", DefaultListLimit)
		if limit < 1 {
			limit = 1
		}
		if limit > MaxListLimit {
			limit = MaxListLimit
		}
		offset := intParam(c, "offset", 0)
		if offset < 0 {
			offset = 0
		}

		filters := messagestore.Filters{
			From:  c.QueryParam("from"),
			Since: c.QueryParam("since"),
			Query: c.QueryParam("q"),
		}

		items, total := store.List(limit, offset, filters)
		return c.JSON(http.StatusOK, &MessageListResponse{items, total, limit, offset})
	}
}

func GetStats(store MessageStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, store.Stats())
	}
}

func intParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
