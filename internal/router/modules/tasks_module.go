package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/taskflow-app/taskflow/internal/interface/http"
	"github.com/taskflow-app/taskflow/internal/interface/middleware"
	"github.com/taskflow-app/taskflow/pkg/helpers"
)

// TasksModule wires the task CRUD and stats routes. Every route sits
// behind the bearer-token gate; handlers read the resolved user id from
// the Gin context.
type TasksModule struct {
	Handler *handlers.TaskHandler
	JWT     *helpers.JWTManager
}

func NewTasksModule(h *handlers.TaskHandler, jwt *helpers.JWTManager) *TasksModule {
	return &TasksModule{Handler: h, JWT: jwt}
}

func (m *TasksModule) Register(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	tasks.Use(middleware.Auth(m.JWT))
	{
		tasks.GET("", m.Handler.List)
		tasks.GET("/stats", m.Handler.Stats)
		tasks.GET("/:id", m.Handler.Get)
		tasks.POST("", m.Handler.Create)
		tasks.PUT("/:id", m.Handler.Update)
		tasks.DELETE("/:id", m.Handler.Delete)
	}
}
