package routes

import (
	"quiz-admin/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Packages    *handlers.PackageHandler
	Public      *handlers.PublicHandler
	Questions   *handlers.UploadHandler
	Phrases     *handlers.UploadHandler
	Maintenance *handlers.MaintenanceHandler
}

func Setup(app *fiber.App, h Handlers, requireAdmin fiber.Handler) {
	api := app.Group("/api")

	// Auth routes
	authRoutes := api.Group("/auth")
	{
		authRoutes.Post("/init", h.Auth.Init)
		authRoutes.Post("/login", h.Auth.Login)
		authRoutes.Get("/verify", requireAdmin, h.Auth.Verify)
		authRoutes.Post("/change-password", requireAdmin, h.Auth.ChangePassword)
	}

	// Package routes - admin CRUD and per-language files
	packages := api.Group("/packages", requireAdmin)
	{
		packages.Get("/", h.Packages.GetAllPackages)
		packages.Post("/", h.Packages.CreatePackage)
		packages.Get("/:id", h.Packages.GetPackageByID)
		packages.Put("/:id", h.Packages.UpdatePackage)
		packages.Delete("/:id", h.Packages.DeletePackage)
		packages.Post("/:id/upload", h.Packages.UploadPackageFile)
		packages.Delete("/:id/file/:language", h.Packages.DeletePackageFile)
	}

	questions := api.Group("/public-questions", requireAdmin)
	{
		questions.Get("/", h.Questions.GetFiles)
		questions.Post("/upload", h.Questions.UploadFile)
		questions.Delete("/:id", h.Questions.DeleteFile)
	}

	phrases := api.Group("/phrases", requireAdmin)
	{
		phrases.Get("/", h.Phrases.GetFiles)
		phrases.Post("/upload", h.Phrases.UploadFile)
		phrases.Delete("/:id", h.Phrases.DeleteFile)
	}

	maintenance := api.Group("/maintenance", requireAdmin)
	{
		maintenance.Post("/reconcile", h.Maintenance.Reconcile)
	}

	// Public routes - consumer app, no token
	public := api.Group("/public")
	{
		public.Get("/packages", h.Public.GetActivePackages)
		public.Get("/packages/:id", h.Public.GetActivePackage)
		public.Get("/packages/:id/files/:language", h.Public.DownloadPackageFile)
		public.Get("/questions/files/:language", h.Public.DownloadQuestions)
		public.Get("/phrases/files/:language", h.Public.DownloadPhrases)
	}
}
