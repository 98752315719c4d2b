package handler

import (
	"contenthub/internal/middleware"
	"contenthub/internal/model"

	"github.com/gin-gonic/gin"
)

// Router groups every handler of the API with the auth middleware guarding it.
type Router struct {
	Content *ContentHandler
	Search  *SearchHandler
	Auth    *AuthHandler
	User    *UserHandler
	Admin   *AdminHandler
	Image   *ImageHandler
	Setting *SettingHandler

	// RequireAuth rejects anonymous requests. OptionalAuth lets them
	// through but still rejects bad tokens.
	RequireAuth  gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
}

// Register mounts the routes under api, normally the /api/v1 group.
func (rt *Router) Register(api *gin.RouterGroup) {
	treeEditor := middleware.RequireRoles(model.RoleAdmin, model.RoleEditor)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	content := api.Group("/content")
	{
		public := content.Group("", rt.OptionalAuth)
		public.POST("", rt.Content.ListContents)
		public.POST("/path", rt.Content.ResolvePath)
		public.POST("/pathid", rt.Content.ResolveAncestorChain)
		public.POST("/search", rt.Search.Search)
		public.GET("/search/fulltext", rt.Search.FullTextSearch)
		public.POST("/category", rt.Content.ListCategories)
		public.GET("/category/tree", rt.Content.CategoryTree)

		authed := content.Group("", rt.RequireAuth)
		authed.POST("/update", rt.Content.UpdateContent)
		authed.POST("/delete", rt.Content.DeleteContent)

		editors := content.Group("", rt.RequireAuth, treeEditor)
		editors.POST("/create", rt.Content.CreateContent)
		editors.POST("/category/create", rt.Content.CreateCategory)
		editors.POST("/category/update", rt.Content.UpdateCategory)
		editors.POST("/category/delete", rt.Content.DeleteCategory)
	}

	account := api.Group("/account")
	{
		account.POST("/login", rt.Auth.Login)
		account.POST("/refresh", rt.Auth.RefreshToken)

		authed := account.Group("", rt.RequireAuth)
		authed.POST("/logout", rt.Auth.Logout)
		authed.GET("/me", rt.User.GetProfile)
		authed.POST("/update", rt.User.UpdateProfile)
		authed.POST("/update/password", rt.User.UpdatePassword)
		authed.POST("/delete", rt.User.DeleteAccount)
		authed.POST("/create", adminOnly, rt.User.CreateAccount)
	}

	admin := api.Group("/admin", rt.RequireAuth, adminOnly)
	{
		admin.GET("/users", rt.Admin.ListUsers)
		admin.PUT("/users/:userId/role", rt.Admin.SetRole)
	}

	api.GET("/image/:filename", rt.Image.Get)
	images := api.Group("/images", rt.RequireAuth)
	{
		images.POST("", rt.Image.Upload)
		images.POST("/search", adminOnly, rt.Image.List)
		images.POST("/delete", adminOnly, rt.Image.Delete)
	}

	setting := api.Group("/setting")
	{
		setting.POST("/:key", rt.Setting.Get)
		setting.POST("/:key/update", rt.RequireAuth, rt.Setting.Update)
		setting.POST("/:key/delete", rt.RequireAuth, rt.Setting.Delete)
	}
}
