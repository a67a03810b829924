// Package api serves the read-only JSON listings of the forum.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ditto/internal/model"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// PageSize is the number of subjects per listing page.
const PageSize = 15

// Listings provides the cached subject listings.
type Listings interface {
	Trending(ctx context.Context) ([]model.Subject, error)
	Recent(ctx context.Context) ([]model.Subject, error)
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Envelope wraps every response body.
type Envelope struct {
	Data  any     `json:"data"`
	Error *string `json:"error"`
}

// Page is one page of a subject listing.
type Page struct {
	Subjects []model.Subject `json:"subjects"`
	Page     int             `json:"page"`
	Pages    int             `json:"pages"`
	Total    int             `json:"total"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Data: data})
}

func fail(c *gin.Context, status int, err error) {
	msg := err.Error()
	c.AbortWithStatusJSON(status, Envelope{Error: &msg})
}

// NewRouter builds the gin engine. health may be nil.
func NewRouter(l Listings, health Pinger, allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), corsFor(allowOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				fail(c, http.StatusServiceUnavailable, err)
				return
			}
		}
		ok(c, gin.H{"status": "ok"})
	})

	g := r.Group("/api")
	g.GET("/subjects", listing(l.Recent))
	g.GET("/subjects/trending", listing(l.Trending))
	return r
}

func corsFor(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func listing(fetch func(context.Context) ([]model.Subject, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		subjects, err := fetch(c.Request.Context())
		if err != nil {
			slog.Error("api: listing failed", "path", c.FullPath(), "error", err)
			fail(c, http.StatusInternalServerError, err)
			return
		}
		ok(c, Paginate(subjects, c.Query("page"), PageSize))
	}
}

// Paginate returns the requested page of subjects. A missing or malformed
// page number yields the first page; a number past the end yields the last.
func Paginate(subjects []model.Subject, raw string, size int) Page {
	total := len(subjects)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	return Page{
		Subjects: subjects[start:end:end],
		Page:     page,
		Pages:    pages,
		Total:    total,
	}
}

// RequestLogger logs one line per request through slog.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("api: request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
