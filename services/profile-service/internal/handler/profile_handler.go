package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"seungpyo.lee/StudentPortal/pkg/jwt"
	"seungpyo.lee/StudentPortal/pkg/logger"
	"seungpyo.lee/StudentPortal/pkg/util"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/domain"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/model"
)

// ProfileService is what the handler needs from the service layer.
type ProfileService interface {
	Resolve(ctx context.Context, req domain.ImageRequest) (*domain.ResolvedImage, error)
	Upload(ctx context.Context, principal jwt.Principal, identifier string, data []byte) (*domain.ProfileImage, error)
	Delete(ctx context.Context, principal jwt.Principal, identifier string) error
	Metadata(ctx context.Context, identifier string) (*domain.ProfileImage, error)
}

type ProfileHandler struct {
	service        ProfileService
	log            *logger.Logger
	maxUploadBytes int64
}

func NewProfileHandler(service ProfileService, log *logger.Logger, maxUploadBytes int64) *ProfileHandler {
	return &ProfileHandler{service: service, log: log, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes mounts the profile routes. Upload and delete are only mounted when authMw is not nil.
func (h *ProfileHandler) RegisterRoutes(r gin.IRouter, authMw gin.HandlerFunc) {
	r.GET("/profile/:name", h.GetProfileImage)
	r.GET("/profile/:name/meta", h.GetProfileImageMetadata)
	if authMw != nil {
		r.PUT("/profile/:name", authMw, h.UploadProfileImage)
		r.DELETE("/profile/:name", authMw, h.DeleteProfileImage)
	}
}

// GetProfileImage handles GET /profile/:name.
func (h *ProfileHandler) GetProfileImage(c *gin.Context) {
	var uri model.ProfileImageURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile image name"})
		return
	}
	img, err := h.service.Resolve(c.Request.Context(), domain.ImageRequest{Identifier: uri.Name})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Length", strconv.FormatInt(img.Length, 10))
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

// UploadProfileImage handles PUT /profile/:name. The body is the raw image.
func (h *ProfileHandler) UploadProfileImage(c *gin.Context) {
	var uri model.ProfileImageURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile image name"})
		return
	}
	principal, _ := util.GetPrincipal(c)

	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, domain.ErrImageTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	img, err := h.service.Upload(c.Request.Context(), principal, uri.Name, data)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(img))
}

// DeleteProfileImage handles DELETE /profile/:name.
func (h *ProfileHandler) DeleteProfileImage(c *gin.Context) {
	var uri model.ProfileImageURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile image name"})
		return
	}
	principal, _ := util.GetPrincipal(c)
	if err := h.service.Delete(c.Request.Context(), principal, uri.Name); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProfileImageMetadata handles GET /profile/:name/meta.
func (h *ProfileHandler) GetProfileImageMetadata(c *gin.Context) {
	var uri model.ProfileImageURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile image name"})
		return
	}
	img, err := h.service.Metadata(c.Request.Context(), uri.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(img))
}

func (h *ProfileHandler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		status, msg = http.StatusBadRequest, domain.ErrInvalidIdentifier.Error()
	case errors.Is(err, domain.ErrForbidden):
		status, msg = http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrImageNotFound):
		status, msg = http.StatusNotFound, domain.ErrImageNotFound.Error()
	case errors.Is(err, domain.ErrImageTooLarge):
		status, msg = http.StatusRequestEntityTooLarge, domain.ErrImageTooLarge.Error()
	case errors.Is(err, domain.ErrUnsupportedImage):
		status, msg = http.StatusUnsupportedMediaType, domain.ErrUnsupportedImage.Error()
	case errors.Is(err, domain.ErrResourceRead):
		msg = domain.ErrResourceRead.Error()
	}
	if status >= http.StatusInternalServerError {
		h.log.FromContext(c.Request.Context()).Error("profile request failed", "error", err.Error())
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func toResponse(img *domain.ProfileImage) model.ProfileImageResponse {
	return model.ProfileImageResponse{
		Identifier:  img.Identifier,
		URL:         "/profile/" + img.Identifier,
		Size:        img.Size,
		ContentType: img.ContentType,
		UploadedBy:  img.UploadedBy,
		UpdatedAt:   img.UpdatedAt,
	}
}
