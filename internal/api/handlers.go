package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/axellelanca/linkbio/internal/errors"
	"github.com/axellelanca/linkbio/internal/models"
	"github.com/axellelanca/linkbio/internal/ratelimit"
	"github.com/axellelanca/linkbio/internal/services"
	"github.com/gin-gonic/gin"
)

// ClickEventsChannel is the global channel used to send click audit events.
// This channel enables asynchronous persistence of click records without
// delaying the visitor's redirect.
var ClickEventsChannel chan models.ClickEvent

// SetupRoutes configures all Gin API routes and injects necessary dependencies.
// Parameters:
//   - router: Gin engine instance to configure routes on
//   - profileService: business logic service for profile operations
//   - createLimiter: fixed-window limiter guarding profile creation
//   - readLimiter: fixed-window limiter guarding profile reads
//   - bufferSize: size of the click events channel buffer for async processing
func SetupRoutes(router *gin.Engine, profileService *services.ProfileService,
	createLimiter, readLimiter *ratelimit.FixedWindow, bufferSize int) {
	// Initialize the global click events channel if it hasn't been created yet
	if ClickEventsChannel == nil {
		ClickEventsChannel = make(chan models.ClickEvent, bufferSize)
	}

	// Health Check Route - used for monitoring service availability
	router.GET("/health", HealthCheckHandler)

	// API routes. Creation and reads carry their respective limiters;
	// redirects, analytics and updates are unthrottled.
	api := router.Group("/api")
	{
		api.POST("/create", RateLimitCreate(createLimiter), CreateProfileHandler(profileService))
		api.GET("/profile/:id", RateLimitRead(readLimiter), GetProfileHandler(profileService))
		api.GET("/profile/slug/:slug", RateLimitRead(readLimiter), GetProfileBySlugHandler(profileService))
		api.GET("/analytics/:id", GetAnalyticsHandler(profileService))
		api.PUT("/profile/:id", UpdateProfileHandler(profileService))
	}

	// Click tracker: counts the click, then redirects to the link target
	router.GET("/r/:id/:idx", RedirectHandler(profileService))
}

// HealthCheckHandler handles the /health route to verify service status
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RateLimitCreate rejects callers past the creation limit with a JSON body.
func RateLimitCreate(limiter *ratelimit.FixedWindow) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many profile creations. Try again later.",
			})
			return
		}
		c.Next()
	}
}

// RateLimitRead rejects callers past the read limit with a plain-text body.
func RateLimitRead(limiter *ratelimit.FixedWindow) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CreateProfileRequest represents the JSON request body for creating a profile.
// Every field is optional; omitted styling fields fall back to the defaults.
type CreateProfileRequest struct {
	Name          string          `json:"name"`
	Bio           string          `json:"bio"`
	Links         []models.Link   `json:"links"`
	Photo         string          `json:"photo"`
	Theme         string          `json:"theme"`
	BgColor       string          `json:"bgColor"`
	ButtonColor   string          `json:"buttonColor"`
	Template      string          `json:"template"`
	Slug          string          `json:"slug"`
	Customization json.RawMessage `json:"customization"`
}

// UpdateProfileRequest represents the JSON request body for a partial update.
// The edit token is mandatory; everything else is optional. Links uses a
// pointer so an explicitly supplied empty array still replaces the stored one.
type UpdateProfileRequest struct {
	EditToken     string          `json:"editToken"`
	Name          string          `json:"name"`
	Bio           string          `json:"bio"`
	Links         *[]models.Link  `json:"links"`
	Photo         string          `json:"photo"`
	Theme         string          `json:"theme"`
	BgColor       string          `json:"bgColor"`
	ButtonColor   string          `json:"buttonColor"`
	Template      string          `json:"template"`
	Slug          string          `json:"slug"`
	Customization json.RawMessage `json:"customization"`
}

// CreateProfileHandler handles the creation of a new profile.
// Replies with the generated id, the public URL and the secret edit token.
// This is the only time the token is ever returned.
func CreateProfileHandler(profileService *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
			return
		}

		result, err := profileService.CreateProfile(services.CreateProfileInput{
			Name:          req.Name,
			Bio:           req.Bio,
			Photo:         req.Photo,
			Links:         req.Links,
			Theme:         req.Theme,
			BgColor:       req.BgColor,
			ButtonColor:   req.ButtonColor,
			Template:      req.Template,
			Slug:          req.Slug,
			Customization: req.Customization,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidSlug):
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid slug"})
			case errors.Is(err, apperrors.ErrSlugTaken):
				c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Slug already taken"})
			default:
				// Internal detail is logged, never sent to the caller
				log.Printf("Error creating profile: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal error"})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":   true,
			"id":        result.ID,
			"url":       result.URL,
			"editToken": result.EditToken,
		})
	}
}

// GetProfileHandler returns the public projection of a profile looked up by id.
// Each successful read increments the profile's view counter.
func GetProfileHandler(profileService *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := profileService.GetProfileByID(c.Param("id"))
		if err != nil {
			respondProfileError(c, err)
			return
		}
		c.JSON(http.StatusOK, profileResponse(view))
	}
}

// GetProfileBySlugHandler is GetProfileHandler for slug lookups.
func GetProfileBySlugHandler(profileService *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := profileService.GetProfileBySlug(c.Param("slug"))
		if err != nil {
			respondProfileError(c, err)
			return
		}
		c.JSON(http.StatusOK, profileResponse(view))
	}
}

// respondProfileError maps profile read errors onto HTTP responses.
func respondProfileError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
		return
	}
	log.Printf("Error retrieving profile: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
}

// profileResponse builds the JSON body shared by both profile read endpoints.
func profileResponse(view *services.ProfileView) gin.H {
	return gin.H{
		"success":       true,
		"id":            view.ID,
		"name":          view.Name,
		"bio":           view.Bio,
		"photo":         view.Photo,
		"links":         view.Links,
		"theme":         view.Theme,
		"bgColor":       view.BgColor,
		"buttonColor":   view.ButtonColor,
		"template":      view.Template,
		"customization": view.Customization,
		"views":         view.Views,
		"created_at":    view.CreatedAt,
	}
}

// RedirectHandler counts a click on the link at position :idx and redirects
// the visitor to its target. The redirect is issued even when persisting the
// incremented counter failed; an audit event is additionally queued for the
// click workers without ever blocking the response.
func RedirectHandler(profileService *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		idx, err := strconv.Atoi(c.Param("idx"))
		if err != nil {
			c.String(http.StatusNotFound, "Link not found")
			return
		}

		targetURL, err := profileService.RecordClick(id, idx)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrProfileNotFound):
				c.String(http.StatusNotFound, "Not found")
			case errors.Is(err, apperrors.ErrLinkNotFound):
				c.String(http.StatusNotFound, "Link not found")
			default:
				log.Printf("Error recording click for %s/%d: %v", id, idx, err)
				c.String(http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		clickEvent := models.ClickEvent{
			ProfileID: id,
			LinkIndex: idx,
			Timestamp: time.Now(),
			UserAgent: c.GetHeader("User-Agent"),
			IPAddress: c.ClientIP(),
		}

		// Non-blocking send: a full buffer drops the audit event rather than
		// delaying the visitor
		select {
		case ClickEventsChannel <- clickEvent:
		default:
			log.Printf("WARNING: ClickEventsChannel is full, dropping click event for %s/%d", id, idx)
		}

		c.Redirect(http.StatusFound, targetURL)
	}
}

// GetAnalyticsHandler returns view and per-link click counters.
// Requires the profile's edit token as the 'token' query parameter.
func GetAnalyticsHandler(profileService *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		analytics, err := profileService.GetAnalytics(c.Param("id"), c.Query("token"))
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrProfileNotFound):
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
			case errors.Is(err, apperrors.ErrUnauthorized):
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			default:
				log.Printf("Error retrieving analytics: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal error"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"views":   analytics.Views,
			"links":   analytics.Links,
		})
	}
}

// UpdateProfileHandler applies a partial profile update authorized by the
// edit token. Omitted fields keep their stored values.
func UpdateProfileHandler(profileService *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
			return
		}

		if req.EditToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Missing token"})
			return
		}

		id := c.Param("id")
		err := profileService.UpdateProfile(id, req.EditToken, services.UpdateProfileInput{
			Name:          req.Name,
			Bio:           req.Bio,
			Photo:         req.Photo,
			Links:         req.Links,
			Theme:         req.Theme,
			BgColor:       req.BgColor,
			ButtonColor:   req.ButtonColor,
			Template:      req.Template,
			Slug:          req.Slug,
			Customization: req.Customization,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrProfileNotFound):
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
			case errors.Is(err, apperrors.ErrUnauthorized):
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			default:
				log.Printf("Error updating profile %s: %v", id, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
	}
}
