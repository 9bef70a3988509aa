// Package controller holds what every route group shares: its dependencies
// and the small helpers handlers use to bind requests and parse paths.
package controller

import (
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitecrew/apperr"
	"sitecrew/config"
	"sitecrew/middleware"
	"sitecrew/services"
	"sitecrew/storage"
	"sitecrew/store"
)

// Deps is handed to every XxxController registrar. Firestore and Files may
// be nil when the deployment has not configured them.
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     *store.Store
	Tokens    *middleware.Tokens
	Assign    *services.AssignmentService
	Firestore *firestore.Client
	Files     storage.Presigner

	// Importer builds the import workflow for the calling user, who becomes
	// the creator of any project the import adds.
	Importer func(createdBy string) *services.ImportService

	Now func() time.Time
}

func (d *Deps) Clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Auth returns the access-token middleware followed by an optional role guard.
func (d *Deps) Auth(guards ...gin.HandlerFunc) []gin.HandlerFunc {
	return append([]gin.HandlerFunc{middleware.AccessTokenMiddleware(d.Tokens)}, guards...)
}

// Bind decodes the JSON body into v, answering 400 on failure.
func Bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		apperr.Respond(c, apperr.New(apperr.Validation, "invalid request data", err))
		return false
	}
	return true
}

// ParseDate reads a YYYY-MM-DD value. The empty string yields nil.
func ParseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, apperr.Validationf("%s must be a YYYY-MM-DD date", field)
	}
	return &t, nil
}

func QueryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func OK(c *gin.Context, status int, key string, v any) {
	c.JSON(status, gin.H{"success": true, key: v})
}
