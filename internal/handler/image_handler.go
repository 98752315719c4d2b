package handler

import (
	"mime/multipart"
	"net/http"

	"contenthub/internal/middleware"
	"contenthub/internal/service"
	"contenthub/pkg/log"

	"github.com/gin-gonic/gin"
)

// uploadFormField is the multipart field carrying the image files.
const uploadFormField = "img"

// ImageHandler serves image upload, download and administration.
type ImageHandler struct {
	imageService service.ImageService
}

// NewImageHandler creates an ImageHandler.
func NewImageHandler(imageService service.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// Upload handles POST /images with up to ten files in the img field.
func (h *ImageHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		log.Warnf("Upload: invalid multipart form, error: %v", err)
		badRequest(c, "invalid multipart form")
		return
	}
	headers := form.File[uploadFormField]
	if len(headers) > service.MaxUploadFiles {
		badRequest(c, "too many files")
		return
	}

	files := make([]service.ImageUpload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			log.Warnf("Upload: failed to open part %s, error: %v", fh.Filename, err)
			badRequest(c, "failed to read uploaded file")
			return
		}
		opened = append(opened, f)
		files = append(files, service.ImageUpload{
			OriginalName: fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			Size:         fh.Size,
			Reader:       f,
		})
	}

	images, err := h.imageService.Upload(c.Request.Context(), middleware.CallerFrom(c), files)
	if err != nil {
		respondError(c, "Upload", err)
		return
	}
	respond(c, "Images uploaded successfully", images)
}

// Get handles GET /image/:filename by streaming the stored bytes.
func (h *ImageHandler) Get(c *gin.Context) {
	body, image, err := h.imageService.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		respondError(c, "GetImage", err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, image.Length, image.ContentType, body, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}

// List handles POST /images/search.
func (h *ImageHandler) List(c *gin.Context) {
	var req service.ImageListInput
	if !bindOptionalJSON(c, "ListImages", &req) {
		return
	}
	res, err := h.imageService.List(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		respondError(c, "ListImages", err)
		return
	}
	respond(c, "Images retrieved successfully", res)
}

// DeleteImageRequest is the body of POST /images/delete.
type DeleteImageRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// Delete handles POST /images/delete.
func (h *ImageHandler) Delete(c *gin.Context) {
	var req DeleteImageRequest
	if !bindJSON(c, "DeleteImage", &req) {
		return
	}
	if err := h.imageService.Delete(c.Request.Context(), middleware.CallerFrom(c), req.Filename); err != nil {
		respondError(c, "DeleteImage", err)
		return
	}
	log.Infow("image deleted", "filename", req.Filename)
	respond(c, "Image deleted successfully", nil)
}
