package handler

import (
	"contenthub/internal/middleware"
	"contenthub/internal/model"
	"contenthub/internal/service"
	"contenthub/pkg/log"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves path resolution and the category/content tree.
type ContentHandler struct {
	pathService     service.PathService
	categoryService service.CategoryService
	contentService  service.ContentService
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(pathService service.PathService, categoryService service.CategoryService, contentService service.ContentService) *ContentHandler {
	return &ContentHandler{
		pathService:     pathService,
		categoryService: categoryService,
		contentService:  contentService,
	}
}

// ResolvePathRequest names a tree position by category names, optionally
// ending in a content name.
type ResolvePathRequest struct {
	Segments []string `json:"segments" binding:"required"`
}

// ResolvePath handles POST /content/path.
func (h *ContentHandler) ResolvePath(c *gin.Context) {
	var req ResolvePathRequest
	if !bindJSON(c, "ResolvePath", &req) {
		return
	}
	res, err := h.pathService.ResolvePath(c.Request.Context(), req.Segments, middleware.CallerFrom(c))
	if err != nil {
		respondError(c, "ResolvePath", err)
		return
	}
	respond(c, "Path resolved successfully", res)
}

type idRequest struct {
	ID string `json:"id" binding:"required"`
}

// ResolveAncestorChain handles POST /content/pathid.
func (h *ContentHandler) ResolveAncestorChain(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, "ResolveAncestorChain", &req) {
		return
	}
	chain, err := h.pathService.ResolveAncestorChain(c.Request.Context(), req.ID, middleware.CallerFrom(c))
	if err != nil {
		respondError(c, "ResolveAncestorChain", err)
		return
	}
	respond(c, "Ancestor chain resolved successfully", chain)
}

// ListCategoriesRequest selects the children of one category. A missing
// parentId lists the roots.
type ListCategoriesRequest struct {
	ParentID *string `json:"parentId"`
}

// ListCategories handles POST /content/category.
func (h *ContentHandler) ListCategories(c *gin.Context) {
	var req ListCategoriesRequest
	if !bindOptionalJSON(c, "ListCategories", &req) {
		return
	}
	categories, err := h.categoryService.List(c.Request.Context(), req.ParentID, middleware.CallerFrom(c))
	if err != nil {
		respondError(c, "ListCategories", err)
		return
	}
	respond(c, "Categories retrieved successfully", categories)
}

// CategoryTree handles GET /content/category/tree.
func (h *ContentHandler) CategoryTree(c *gin.Context) {
	tree, err := h.categoryService.Tree(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, "CategoryTree", err)
		return
	}
	respond(c, "Category tree retrieved successfully", tree)
}

// CreateCategory handles POST /content/category/create.
func (h *ContentHandler) CreateCategory(c *gin.Context) {
	var req service.CreateCategoryInput
	if !bindJSON(c, "CreateCategory", &req) {
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		respondError(c, "CreateCategory", err)
		return
	}
	log.Infow("category created", "id", category.ID, "name", category.Name)
	respond(c, "Category created successfully", category)
}

// UpdateCategoryRequest carries the target id and the fields to change.
type UpdateCategoryRequest struct {
	ID string `json:"id" binding:"required"`
	model.CategoryPatch
}

// UpdateCategory handles POST /content/category/update.
func (h *ContentHandler) UpdateCategory(c *gin.Context) {
	var req UpdateCategoryRequest
	if !bindJSON(c, "UpdateCategory", &req) {
		return
	}
	category, err := h.categoryService.Update(c.Request.Context(), middleware.CallerFrom(c), req.ID, req.CategoryPatch)
	if err != nil {
		respondError(c, "UpdateCategory", err)
		return
	}
	respond(c, "Category updated successfully", category)
}

// DeleteCategory handles POST /content/category/delete. The whole subtree
// goes with it.
func (h *ContentHandler) DeleteCategory(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, "DeleteCategory", &req) {
		return
	}
	category, err := h.categoryService.Delete(c.Request.Context(), middleware.CallerFrom(c), req.ID)
	if err != nil {
		respondError(c, "DeleteCategory", err)
		return
	}
	log.Infow("category deleted", "id", category.ID)
	respond(c, "Category deleted successfully", category)
}

// ListContentsRequest selects the content of one category. A missing
// categoryId lists uncategorised content.
type ListContentsRequest struct {
	CategoryID *string `json:"categoryId"`
}

// ListContents handles POST /content.
func (h *ContentHandler) ListContents(c *gin.Context) {
	var req ListContentsRequest
	if !bindOptionalJSON(c, "ListContents", &req) {
		return
	}
	contents, err := h.contentService.List(c.Request.Context(), req.CategoryID, middleware.CallerFrom(c))
	if err != nil {
		respondError(c, "ListContents", err)
		return
	}
	respond(c, "Contents retrieved successfully", contents)
}

// CreateContent handles POST /content/create.
func (h *ContentHandler) CreateContent(c *gin.Context) {
	var req service.CreateContentInput
	if !bindJSON(c, "CreateContent", &req) {
		return
	}
	content, err := h.contentService.Create(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		respondError(c, "CreateContent", err)
		return
	}
	log.Infow("content created", "id", content.ID, "name", content.Name)
	respond(c, "Content created successfully", content)
}

// UpdateContentRequest carries the target id and the fields to change.
type UpdateContentRequest struct {
	ID string `json:"id" binding:"required"`
	model.ContentPatch
}

// UpdateContent handles POST /content/update.
func (h *ContentHandler) UpdateContent(c *gin.Context) {
	var req UpdateContentRequest
	if !bindJSON(c, "UpdateContent", &req) {
		return
	}
	content, err := h.contentService.Update(c.Request.Context(), middleware.CallerFrom(c), req.ID, req.ContentPatch)
	if err != nil {
		respondError(c, "UpdateContent", err)
		return
	}
	respond(c, "Content updated successfully", content)
}

// DeleteContent handles POST /content/delete.
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, "DeleteContent", &req) {
		return
	}
	content, err := h.contentService.Delete(c.Request.Context(), middleware.CallerFrom(c), req.ID)
	if err != nil {
		respondError(c, "DeleteContent", err)
		return
	}
	log.Infow("content deleted", "id", content.ID)
	respond(c, "Content deleted successfully", content)
}
