package rest

import (
	"errors"
	"net/http"
	"sort"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/dmitrijs2005/geotrack/internal/server/apierror"
	"github.com/dmitrijs2005/geotrack/internal/server/session"
	"github.com/gin-gonic/gin"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// locationRequest keeps the coordinates untyped so that a wrong JSON type is
// reported by the location service after the freshness check.
type locationRequest struct {
	Latitude  any `json:"latitude"`
	Longitude any `json:"longitude"`
}

func (s *HTTPServer) checkLogin(c *gin.Context) {
	res, _ := session.FromContext(c)
	if res.State != session.Authenticated {
		c.JSON(http.StatusOK, gin.H{"loggedIn": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loggedIn": true,
		"user": gin.H{
			"email": res.Claims.Email,
			"uuid":  res.Claims.UUID,
		},
	})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Abort(c, apierror.BadRequest())
		return
	}

	result, err := s.users.Login(c.Request.Context(), c.ClientIP(), req.Email, req.Password)
	if err != nil {
		apierror.Abort(c, apierror.LoginError(err))
		return
	}

	s.guard.Cookies().Set(c.Writer, result.Token)
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{"email": result.User.Email},
	})
}

func (s *HTTPServer) logout(c *gin.Context) {
	s.guard.Cookies().Clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *HTTPServer) signUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Abort(c, apierror.BadRequest())
		return
	}

	user, err := s.users.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apierror.Abort(c, apierror.SignUpError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sign up complete",
		"user":    gin.H{"email": user.Email},
	})
}

func (s *HTTPServer) updateLocation(c *gin.Context) {
	claims, ok := session.ClaimsFromContext(c)
	if !ok {
		apierror.Abort(c, apierror.Unauthenticated())
		return
	}

	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Abort(c, apierror.LocationError(common.ErrMalformedPayload))
		return
	}

	loc, err := s.locations.Update(c.Request.Context(), claims, req.Latitude, req.Longitude)
	if err != nil {
		apierror.Abort(c, apierror.LocationError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Location updated",
		"location": loc,
	})
}

func (s *HTTPServer) upload(c *gin.Context) {
	claims, ok := session.ClaimsFromContext(c)
	if !ok {
		apierror.Abort(c, apierror.Unauthenticated())
		return
	}

	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		apierror.Abort(c, apierror.UploadError(common.ErrNotMultipart))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = common.ErrNoFile
		}
		s.logger.Warn(c.Request.Context(), "multipart parse failed", "error", err)
		apierror.Abort(c, apierror.UploadError(err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.logger.Error(c.Request.Context(), "open uploaded file", "error", err)
		apierror.Abort(c, apierror.UploadError(err))
		return
	}
	defer f.Close()

	result, err := s.uploads.Upload(c.Request.Context(), claims, fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		apierror.Abort(c, apierror.UploadError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"key":     result.Key,
		"url":     result.URL,
	})
}

func (s *HTTPServer) healthz(c *gin.Context) {
	if s.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	failed := s.health.Check(c.Request.Context())
	if len(failed) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	components := make([]string, 0, len(failed))
	for name, err := range failed {
		components = append(components, name)
		s.logger.Warn(c.Request.Context(), "health check failed", "component", name, "error", err)
	}
	sort.Strings(components)

	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status": "unavailable",
		"failed": components,
	})
}
