package FiberConfig

import (
	"fmt"
	"os"

	"Dayboard/Controllers"
	"Dayboard/Models"
	"Dayboard/Sync"
	"Dayboard/TaskLogs"
	"Dayboard/Tasks"
	"Dayboard/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, syncService *Sync.Service) {
	// Initialize services and handlers
	taskService := Tasks.NewService(db, syncService.Cache)
	logService := TaskLogs.NewService(db)

	userController := Controllers.NewUserController(db)
	taskController := Controllers.NewTaskController(taskService)
	boardController := Controllers.NewBoardController(db, taskService, logService)
	syncController := Controllers.NewSyncController(syncService)
	prefController := Controllers.NewPrefController(db)

	app.Post("/api/Login", userController.Login)
	app.Post("/api/Logout", userController.Logout)
	app.Post("/api/RegisterUser", middleware.Verify(Models.PermissionAdmin), userController.Register)
	app.Get("/api/User", middleware.Verify(Models.PermissionViewer), userController.GetCurrentUser)
	app.Get("/api/FetchUsers", middleware.Verify(Models.PermissionViewer), userController.GetUsers)

	// Task definition routes
	tasks := app.Group("/api/tasks", middleware.Verify(Models.PermissionViewer))
	tasks.Get("/", taskController.GetTasks)
	tasks.Post("/", middleware.Verify(Models.PermissionEditor), taskController.CreateTask)
	tasks.Put("/:id", middleware.Verify(Models.PermissionEditor), taskController.UpdateTask)
	tasks.Delete("/:id", middleware.Verify(Models.PermissionEditor), taskController.DeleteTask)

	// Board routes
	board := app.Group("/api/board", middleware.Verify(Models.PermissionViewer))
	board.Get("/", boardController.GetBoard)
	board.Get("/export", boardController.ExportBoard)
	board.Post("/reorder", boardController.Reorder)
	board.Post("/move", boardController.Move)

	// Task log routes
	logs := app.Group("/api/tasklogs", middleware.Verify(Models.PermissionViewer))
	logs.Put("/:id/status", boardController.UpdateStatus)
	logs.Put("/:id/remark", boardController.SetRemark)

	// Change detection routes
	syncGroup := app.Group("/api/sync", middleware.Verify(Models.PermissionViewer))
	syncGroup.Get("/", syncController.GetSync)
	syncGroup.Post("/suspend", syncController.Suspend)
	syncGroup.Post("/resume", syncController.Resume)

	// Preference routes
	prefs := app.Group("/api/prefs", middleware.Verify(Models.PermissionViewer))
	prefs.Get("/:key", prefController.GetPref)
	prefs.Put("/:key", prefController.SetPref)
}

func FiberConfig(syncService *Sync.Service) {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.SimpleLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // Important for cookies
		MaxAge:           300,
	}))

	SetupRoutes(app, Models.DB, syncService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	app.Listen(":" + port)
}
