package media

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/alexsergeyev/skillforge/services/mediastore"
	"github.com/alexsergeyev/skillforge/utils/middleware"
	"github.com/alexsergeyev/skillforge/utils/response"
)

// 10 MB is plenty for preview images and avatars.
const maxUploadSize = 10 << 20

var allowedFolders = map[string]bool{
	"avatars":         true,
	"course-previews": true,
	"lesson-previews": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// MediaHandler handles media uploads to object storage
type MediaHandler struct {
	spaces *mediastore.SpacesClient
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(spaces *mediastore.SpacesClient) *MediaHandler {
	return &MediaHandler{spaces: spaces}
}

// Upload handles POST /api/v1/media/upload (multipart form with "file"
// and "folder" fields) and returns the public URL of the stored object.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	if _, ok := middleware.GetUser(c); !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	if h.spaces == nil {
		return response.InternalServerError(c, "Media storage is not configured")
	}

	folder := strings.ToLower(c.FormValue("folder", "course-previews"))
	if !allowedFolders[folder] {
		return response.BadRequest(c, "Unknown upload folder")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A file is required")
	}

	if fileHeader.Size > maxUploadSize {
		return response.BadRequest(c, "File exceeds the 10 MB upload limit")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		return response.BadRequest(c, "Only JPEG, PNG, WebP and GIF images are allowed")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	url, err := h.spaces.UploadMedia(c.Context(), folder, fileHeader.Filename, file, contentType)
	if err != nil {
		return response.BadGateway(c, "Failed to store uploaded file")
	}

	return response.Created(c, fiber.Map{"url": url})
}
