package main

import (
	"context"
	"embed"
	"fmt"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"gorm.io/gorm/logger"

	"inkwell/internal/database"
	"inkwell/internal/events"
	"inkwell/internal/providers"
	"inkwell/internal/services"
	"inkwell/internal/utils"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if database.IsDevelopment() {
		// a missing .env is fine outside dev setups
		_ = utils.LoadEnv()
	}

	app := NewApp()
	events.EnableRuntimeEmitter()

	db, err := database.Init(database.Config{
		LogLevel: logger.Info,
	})
	if err != nil {
		fmt.Println("Error opening database:", err)
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		app.dbClose = sqlDB.Close
	}

	registry, err := providers.NewRegistry()
	if err != nil {
		fmt.Println("Error loading provider registry:", err)
		return
	}

	//Create each service
	keyringService := services.NewKeyringService()
	factory := providers.DefaultDriverFactory(registry, app.loader.LoadModel)
	dbService := services.NewDbServices(db, registry, keyringService, factory, app.loader, app.caps.probes(), services.DefaultCacheDir())
	clientService := services.NewClientService(dbService.Connections, dbService.AppSettings, keyringService)

	app.AppSettings = dbService.AppSettings
	app.Connections = dbService.Connections
	app.LocalModels = dbService.LocalModels
	app.Client = clientService

	// Create application with options
	err = wails.Run(&options.App{
		Title:  "Inkwell",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
			WebviewGpuPolicy:    linux.WebviewGpuPolicyAlways,
			ProgramName:         "Inkwell",
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup: func(ctx context.Context) {
			app.startup(ctx)
			if err := dbService.StartDbServices(ctx); err != nil {
				fmt.Println("Error starting services:", err)
			}
			if err := clientService.Startup(ctx); err != nil {
				fmt.Println("Error starting client service:", err)
			}
			go app.maybeAutoLoad()
		},
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
			dbService.AppSettings,
			dbService.Connections,
			dbService.LocalModels,
			clientService,
			keyringService,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
