package main

import (
	"fmt"
	"log"
	"os"

	"Dayboard/CronJobs"
	"Dayboard/FiberConfig"
	"Dayboard/Models"
	"Dayboard/Sync"
	"Dayboard/TaskLogs"
	"Dayboard/Tasks"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	setupLogging()

	Models.Connect()

	syncService := Sync.NewService(Models.DB, Sync.DefaultInterval)
	syncService.Start()
	defer syncService.Stop()

	taskService := Tasks.NewService(Models.DB, syncService.Cache)
	logService := TaskLogs.NewService(Models.DB)

	materializer := CronJobs.NewMaterializer(Models.DB, taskService, logService, true)
	if err := materializer.Start(); err != nil {
		fmt.Printf("Failed to start materializer: %v", err)
	}
	defer materializer.Stop()

	FiberConfig.FiberConfig(syncService)
}

func setupLogging() {
	// Create logs directory if it doesn't exist
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
		return
	}

	logFile, err := os.OpenFile("logs/application.log",
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)

	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime)
}
