package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wrenhq/wren/model"
	"github.com/wrenhq/wren/server/middlewares"
	. "github.com/wrenhq/wren/utils/log"
)

// writeError maps the domain error taxonomy onto HTTP statuses. Every error
// body is {"message": ...}; store failures are logged but reported
// generically.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, model.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, model.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, model.ErrAlreadyFollowing):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		Log.Error("request ", c.GetString("requestID"), " failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

// currentUserID reads the identity the auth middleware resolved. Handlers
// behind the middleware trust it unconditionally.
func currentUserID(c *gin.Context) primitive.ObjectID {
	return c.MustGet(middlewares.UserIDKey).(primitive.ObjectID)
}

// pathID parses an ObjectID out of a path parameter.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return primitive.NilObjectID, false
	}
	return id, true
}
