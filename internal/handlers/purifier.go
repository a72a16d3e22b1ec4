package handlers

import (
	"errors"
	"net/http"

	"air_purifier/internal/appliance"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK         = "ok"
	statusSet        = "set"
	statusIdentified = "identified"

	errGetState        = "failed to load state"
	errIdentify        = "failed to identify"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusForError maps characteristic errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case appliance.IsInvalidValue(err):
		return http.StatusBadRequest
	case errors.Is(err, appliance.ErrUnknownProperty):
		return http.StatusNotFound
	case errors.Is(err, appliance.ErrReadOnly):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.GetState(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// Request DTO for writing a characteristic.
type setRequest struct {
	Value *any `json:"value"`
}

// SetCharacteristicRequest is an exported model for Swagger docs of the write payload.
type SetCharacteristicRequest struct {
	// New value: bool for active/mode, 0 (MANUAL) or 1 (AUTO) for targetState
	Value any `json:"value" swaggertype:"string" example:"true"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get purifier state
// @Tags         purifier
// @Produce      json
// @Success      200  {object}  models.PurifierState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/purifier/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "purifier_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      List characteristics
// @Description  Access flags and data types of every characteristic
// @Tags         purifier
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, characteristics"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/purifier/characteristics [get]
// @Security     BearerAuth
func (h *Handler) listCharacteristics(c *gin.Context) {
	ds := h.services.Monitoring.Characteristics()
	c.JSON(http.StatusOK, gin.H{
		"count":           len(ds),
		"characteristics": ds,
	})
}

// @Summary      Read characteristic
// @Tags         purifier
// @Produce      json
// @Param        name  path      string  true  "Characteristic"  Enums(active,mode,currentState,targetState,manufacturer,model,name)
// @Success      200   {object}  map[string]interface{}  "name, value"
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/purifier/characteristics/{name} [get]
// @Security     BearerAuth
func (h *Handler) getCharacteristic(c *gin.Context) {
	name := c.Param("name")
	v, err := h.services.Purifier.Get(c.Request.Context(), name)
	if err != nil {
		h.logAndJSONError(c, statusForError(err), err.Error(), "purifier_get_failed", err, "characteristic", name)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "value": v})
}

// @Summary      Write characteristic
// @Description  active and mode take a bool; targetState takes 0 (MANUAL) or 1 (AUTO)
// @Tags         purifier
// @Accept       json
// @Produce      json
// @Param        name  path      string                    true  "Characteristic"  Enums(active,mode,targetState)
// @Param        body  body      SetCharacteristicRequest  true  "Value payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      405   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/purifier/characteristics/{name} [put]
// @Security     BearerAuth
func (h *Handler) setCharacteristic(c *gin.Context) {
	name := c.Param("name")
	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + "value is required"})
		return
	}

	if err := h.services.Purifier.Set(c.Request.Context(), name, *req.Value); err != nil {
		controller, _ := controllerID(c)
		code := statusForError(err)
		if code == http.StatusInternalServerError {
			h.logAndJSONError(c, code, err.Error(), "purifier_set_failed", err, "characteristic", name, "controller_id", controller)
			return
		}
		if h.log != nil {
			h.log.Infow("purifier_set_rejected", "err", err, "characteristic", name, "controller_id", controller)
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusSet, gin.H{"name": name})
}

// @Summary      Identify
// @Tags         purifier
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/purifier/identify [post]
// @Security     BearerAuth
func (h *Handler) identify(c *gin.Context) {
	if err := h.services.Purifier.Identify(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errIdentify, "purifier_identify_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusIdentified})
}
