package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"time"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/pkg/log"
	"contenthub/pkg/storage"

	"github.com/google/uuid"
)

// MaxUploadFiles caps the number of files in one upload request.
const MaxUploadFiles = 10

// ImageUpload is one file of a multipart upload.
type ImageUpload struct {
	OriginalName string
	ContentType  string
	Size         int64
	Reader       io.Reader
}

// ImageListInput is the body of an image listing request.
type ImageListInput struct {
	Limit *int   `json:"limit"`
	Sort  string `json:"sort"`
	Order string `json:"order"`
	Page  *int   `json:"page"`
}

// ImageListResponse carries one page of images and the overall count.
type ImageListResponse struct {
	Images     []model.Image `json:"images"`
	TotalCount int64         `json:"total_count"`
}

// imageSortColumns whitelists the sort keys clients may use.
var imageSortColumns = map[string]string{
	"id":          "id",
	"_id":         "id",
	"name":        "original_name",
	"contentType": "content_type",
	"length":      "length",
	"uploadDate":  "upload_date",
}

// ImageService stores uploaded images in object storage and their metadata
// in the SQL database.
type ImageService interface {
	Upload(ctx context.Context, caller Caller, files []ImageUpload) ([]model.Image, error)
	// Open returns the image bytes. The caller closes the reader.
	Open(ctx context.Context, filename string) (io.ReadCloser, *model.Image, error)
	List(ctx context.Context, caller Caller, in ImageListInput) (*ImageListResponse, error)
	Delete(ctx context.Context, caller Caller, filename string) error
}

type imageService struct {
	imageRepo repository.ImageRepository
	objects   storage.ObjectStore
}

func NewImageService(imageRepo repository.ImageRepository, objects storage.ObjectStore) ImageService {
	return &imageService{imageRepo: imageRepo, objects: objects}
}

func (s *imageService) Upload(ctx context.Context, caller Caller, files []ImageUpload) ([]model.Image, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, invalidInput("validation failed", FieldError{Field: "img", Message: "is required"})
	}
	if len(files) > MaxUploadFiles {
		return nil, invalidInput("validation failed", FieldError{Field: "img", Message: "too many files"})
	}
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			return nil, invalidInput("validation failed", FieldError{Field: "img", Message: f.OriginalName + " is not an image"})
		}
	}

	images := make([]model.Image, 0, len(files))
	for _, f := range files {
		image, err := s.store(ctx, caller, f)
		if err != nil {
			return nil, err
		}
		images = append(images, *image)
	}
	return images, nil
}

func (s *imageService) store(ctx context.Context, caller Caller, f ImageUpload) (*model.Image, error) {
	filename := strings.ReplaceAll(uuid.NewString(), "-", "")
	hasher := md5.New()

	if err := s.objects.Put(ctx, filename, io.TeeReader(f.Reader, hasher), f.Size, f.ContentType); err != nil {
		return nil, storageError("failed to store image", err)
	}

	image := &model.Image{
		ID:           uuid.NewString(),
		Filename:     filename,
		OriginalName: f.OriginalName,
		ContentType:  f.ContentType,
		Length:       f.Size,
		MD5:          hex.EncodeToString(hasher.Sum(nil)),
		UploadedBy:   caller.UserID,
		UploadDate:   time.Now(),
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		if rmErr := s.objects.Remove(ctx, filename); rmErr != nil {
			log.Warnw("failed to remove orphaned image object", "filename", filename, "error", rmErr)
		}
		return nil, storageError("failed to save image metadata", err)
	}
	log.Infow("image uploaded", "filename", filename, "size", f.Size, "userId", caller.UserID)
	return image, nil
}

func (s *imageService) Open(ctx context.Context, filename string) (io.ReadCloser, *model.Image, error) {
	image, err := s.imageRepo.FindByFilename(ctx, filename)
	if err != nil {
		return nil, nil, lookupError("image", err)
	}
	body, _, err := s.objects.Get(ctx, filename)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil, notFound("image not found")
		}
		return nil, nil, storageError("failed to read image", err)
	}
	return body, image, nil
}

func (s *imageService) List(ctx context.Context, caller Caller, in ImageListInput) (*ImageListResponse, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	limit, page := defaultSearchLimit, 0
	if in.Limit != nil {
		limit = *in.Limit
	}
	if in.Page != nil {
		page = *in.Page
	}
	if in.Sort == "" {
		in.Sort = "uploadDate"
	}

	var fields []FieldError
	if limit < 1 || limit > defaultMaxLimit {
		fields = append(fields, FieldError{Field: "limit", Message: "must be between 1 and 100"})
	}
	if page < 0 {
		fields = append(fields, FieldError{Field: "page", Message: "must not be negative"})
	}
	column, ok := imageSortColumns[in.Sort]
	if !ok {
		fields = append(fields, FieldError{Field: "sort", Message: "only id, name, contentType, length or uploadDate allowed"})
	}
	if in.Order != "" && in.Order != "asc" && in.Order != "desc" {
		fields = append(fields, FieldError{Field: "order", Message: "only desc or asc allowed"})
	}
	if len(fields) > 0 {
		return nil, invalidInput("validation failed", fields...)
	}

	images, total, err := s.imageRepo.List(ctx, repository.ImageListQuery{
		Sort:  column,
		Desc:  in.Order != "asc",
		Skip:  limit * page,
		Limit: limit,
	})
	if err != nil {
		return nil, storageError("failed to list images", err)
	}
	return &ImageListResponse{Images: images, TotalCount: total}, nil
}

func (s *imageService) Delete(ctx context.Context, caller Caller, filename string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if _, err := s.imageRepo.FindByFilename(ctx, filename); err != nil {
		return lookupError("image", err)
	}
	if err := s.objects.Remove(ctx, filename); err != nil && !storage.IsNotFound(err) {
		return storageError("failed to remove image object", err)
	}
	if err := s.imageRepo.DeleteByFilename(ctx, filename); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return storageError("failed to delete image metadata", err)
	}
	return nil
}
