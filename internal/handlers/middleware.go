package handlers

import (
	"errors"
	"net/http"
	"strings"

	"air_purifier/internal/service"

	"github.com/gin-gonic/gin"
)

// ctxControllerID is the gin context key holding the signed-in controller.
const ctxControllerID = "controllerId"

var (
	errMissingAuthorization = errors.New("missing Authorization header")
	errAuthorizationFormat  = errors.New("invalid Authorization header format")
)

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuthorization
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errAuthorizationFormat
	}
	return token, nil
}

// controllerAuth admits signed-in controllers only. The controller id is
// stored on the gin context and on the request context, where the
// purifier service picks it up for the journal.
func (h *Handler) controllerAuth(c *gin.Context) {
	token, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		h.rejectController(c, err.Error())
		return
	}

	id, err := h.services.ParseToken(token)
	if err != nil {
		h.rejectController(c, "invalid or expired token")
		return
	}

	c.Set(ctxControllerID, id)
	c.Request = c.Request.WithContext(service.WithController(c.Request.Context(), id))
	c.Next()
}

func (h *Handler) rejectController(c *gin.Context, reason string) {
	if h.log != nil {
		h.log.Infow("controller_rejected", "path", c.FullPath(), "reason", reason)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason})
}

// controllerID returns the controller admitted by controllerAuth.
func controllerID(c *gin.Context) (int, bool) {
	v, ok := c.Get(ctxControllerID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}
