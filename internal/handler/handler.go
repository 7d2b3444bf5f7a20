package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"
)

// Context keys populated by the auth middleware.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// UserID returns the authenticated caller's id from the context.
func UserID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, apperrors.Unauthenticated("not authenticated")
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.Unauthenticated("not authenticated")
	}
	return id, nil
}

// Role returns the caller's resolved role, empty when not set.
func Role(c *gin.Context) string {
	v, ok := c.Get(ContextRole)
	if !ok {
		return ""
	}
	role, _ := v.(string)
	return role
}

// ParseUUIDParam parses a path parameter as a UUID.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid " + name)
	}
	return id, nil
}
