package routes

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	_ "fieldops/docs" // swagger docs, generated
	"fieldops/internal/adapter/http/handlers"
	"fieldops/internal/adapter/persistence/memory"
	repository2 "fieldops/internal/adapter/persistence/repository"
	"fieldops/internal/infrastructure/config"
	"fieldops/internal/infrastructure/database"
	"fieldops/internal/infrastructure/logging"
	"fieldops/internal/infrastructure/remote"
	"fieldops/internal/lock"
	"fieldops/internal/usecase"
	"fieldops/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const PORT = 8080

// Run will start the server
func Run() {
	logger, cleanup := logging.Setup(os.Getenv("FIELDOPS_LOG_FILE"), slog.LevelInfo)
	defer cleanup()

	setMiddlewares(logger)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	stopSweeper := getRoutes(logger)
	defer stopSweeper()

	err := router.Run(":" + strconv.Itoa(PORT))
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes(logger *slog.Logger) (stop func()) {
	cfg, err := config.Load(os.Getenv("FIELDOPS_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var assignmentRepo interfaces.IAssignmentRepository
	var captureRepo interfaces.ICaptureRepository
	if os.Getenv("FIELDOPS_OFFLINE") == "true" {
		assignmentRepo = memory.NewAssignmentMemoryRepository()
		captureRepo = memory.NewCaptureMemoryRepository()
	} else {
		ddb := database.ConnectDynamoDB()
		assignmentRepo = repository2.NewAssignmentDynamoRepository(ddb)
		captureRepo = repository2.NewCaptureDynamoRepository(ddb)
	}

	locks := lock.NewMutexMap()

	store := usecase.NewAssignmentStoreUseCase(assignmentRepo, captureRepo, cfg, locks, logger)
	machine := usecase.NewStatusMachineUseCase(store, locks, logger)
	filter := usecase.NewFilterUseCase(assignmentRepo)
	stats := usecase.NewStatisticsUseCase(assignmentRepo)
	bulk := usecase.NewBulkUseCase(store, stats, machine, cfg, logger)

	gateway, err := remote.NewHTTPSyncGateway(os.Getenv("FIELDOPS_SYNC_URL"))
	if err != nil {
		log.Fatalf("Failed to configure sync gateway: %v", err)
	}
	syncUC := usecase.NewSyncUseCase(store, gateway, cfg.Sync, logger)
	store.SetDirtyMarker(syncUC)

	assignmentHandler := handlers.NewAssignmentHandler(store, machine)
	bulkHandler := handlers.NewBulkHandler(bulk)
	syncHandler := handlers.NewSyncHandler(syncUC)
	queryHandler := handlers.NewQueryHandler(filter, stats)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addAssignmentRoutes(v1, assignmentHandler, bulkHandler, syncHandler, queryHandler)

	sweepCtx, cancel := context.WithCancel(context.Background())
	bulk.StartSweeper(sweepCtx)
	return func() {
		cancel()
		bulk.StopSweeper()
	}
}

func setMiddlewares(logger *slog.Logger) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("recovered from panic", "panic", recovered)
		c.AbortWithStatus(500)
	}))
}

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}
