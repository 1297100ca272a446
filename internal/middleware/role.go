package middleware

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/franciscosanchezn/gin-kitchen/internal/permissions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Authorize checks that the current cook may perform action. Checks that
// depend on a target cook are made by the handler once it is loaded.
func Authorize(action permissions.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentCook(c)
		if err := permissions.Check(actor, nil, action); err != nil {
			RespondPermissionError(c, err)
			return
		}
		c.Next()
	}
}

// RespondPermissionError aborts with 401 or 403 depending on err
func RespondPermissionError(c *gin.Context, err error) {
	if errors.Is(err, permissions.ErrUnauthenticated) {
		respondUnauthenticated(c)
		return
	}

	message := "You do not have permission to perform this action."
	var denied *permissions.Denied
	if errors.As(err, &denied) {
		message = denied.Reason
	}

	fields := logrus.Fields{"path": c.Request.URL.Path}
	if actor := CurrentCook(c); actor != nil {
		fields["cook_id"] = actor.ID
	}
	log.WithFields(fields).WithError(err).Info("Permission denied")

	c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, message))
}
