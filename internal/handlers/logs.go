package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"air_purifier/internal/models"
	"air_purifier/internal/service"

	"github.com/gin-gonic/gin"
)

// Accepted journal query time layouts, most specific first.
var queryTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

var errQueryTime = errors.New("use RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'")

// logQuery is the query string of GET /api/v1/logs/.
type logQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
	Type string `form:"type"`
}

// filter converts q into a journal filter. A date-only "to" covers the
// whole day. Event type and range checks are left to the service.
func (q logQuery) filter() (service.LogFilter, error) {
	var f service.LogFilter
	var err error
	if q.From != "" {
		if f.From, err = parseQueryTime(q.From); err != nil {
			return f, fmt.Errorf("invalid 'from' time: %w", err)
		}
	}
	if q.To != "" {
		if f.To, err = parseQueryTime(q.To); err != nil {
			return f, fmt.Errorf("invalid 'to' time: %w", err)
		}
		if !strings.ContainsAny(q.To, "T ") {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond)
		}
	}
	f.Type = q.Type
	return f, nil
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range queryTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errQueryTime
}

// logsResponse is the body of a journal query.
type logsResponse struct {
	Count  int                    `json:"count"`
	Events []models.PurifierEvent `json:"events"`
}

// @Summary      List journal
// @Description  Characteristic transitions, identify requests and startups, oldest first. A date-only 'to' includes the whole day.
// @Tags         logs
// @Produce      json
// @Param        from  query     string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to    query     string  false  "End of range, inclusive"  example(2025-08-31)
// @Param        type  query     string  false  "Event type"  Enums(ACTIVE_CHANGE,MODE_CHANGE,STATE_CHANGE,IDENTIFY,STARTUP)
// @Success      200   {object}  logsResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs/ [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	var q logQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := q.filter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	switch {
	case err == nil:
	case service.IsFilterError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		if h.log != nil {
			h.log.Errorw("logs_list_failed", "err", err, "from", f.From, "to", f.To, "type", f.Type)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load journal"})
		return
	}

	if events == nil {
		events = []models.PurifierEvent{}
	}
	c.JSON(http.StatusOK, logsResponse{Count: len(events), Events: events})
}
