package router

import (
	"github.com/taskflow-app/taskflow/internal/application"
	"github.com/taskflow-app/taskflow/internal/container"
	pginfra "github.com/taskflow-app/taskflow/internal/infrastructure/postgres"
	handlers "github.com/taskflow-app/taskflow/internal/interface/http"
	"github.com/taskflow-app/taskflow/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	taskRepo := pginfra.NewTaskRepository(container.GetPGPool())

	authSvc := application.NewAuthService(userRepo, container.GetJWT(), container.GetLogger())
	taskSvc := application.NewTaskService(taskRepo, container.GetRedis(), container.GetLogger(), cfg.StatsCacheTTL)

	authHandler := handlers.NewAuthHandler(authSvc, container.GetLogger())
	taskHandler := handlers.NewTaskHandler(taskSvc, container.GetLogger())

	r.Add(modules.NewHealthModule())
	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewTasksModule(taskHandler, container.GetJWT()))
}
