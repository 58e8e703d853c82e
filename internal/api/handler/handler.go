// Package handler adapts the services to gin routes.
package handler

import (
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/api/middleware"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"

	"github.com/gin-gonic/gin"
)

// Default and maximum page sizes per listing.
const (
	defaultListLimit   = 100
	maxListLimit       = 100
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	defaultAuditLimit  = 50
	maxAuditLimit      = 500
)

// actorFrom identifies the caller for the audit trail.
func actorFrom(c *gin.Context) domain.Actor {
	a := domain.Actor{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	if u := middleware.CurrentUser(c); u != nil {
		a.UserID = u.ID
	}
	return a
}

func toPage(q dto.PageQuery, def, max int) ports.Page {
	q = q.Normalize(def, max)
	return ports.Page{Skip: q.Skip, Limit: q.Limit}
}
