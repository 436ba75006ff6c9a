package memory_module

import (
	"github.com/ethanbaker/legal-assistant/internal/memory"
	"github.com/gin-gonic/gin"
)

// Register routes for the memory module
func RegisterRoutes(g *gin.RouterGroup, store memory.Store) {
	ctl := &controller{store: store}

	g.GET("/memory", ctl.GetMemory) // What the assistant remembers about the caller
}
