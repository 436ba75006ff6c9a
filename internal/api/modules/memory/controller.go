package memory_module

import (
	"net/http"

	"github.com/ethanbaker/legal-assistant/internal/api/middleware"
	"github.com/ethanbaker/legal-assistant/internal/memory"
	"github.com/ethanbaker/legal-assistant/pkg/sdk"
	"github.com/gin-gonic/gin"
)

type controller struct {
	store memory.Store
}

// GetMemory handles GET requests for the caller's folded memory
func (ctl *controller) GetMemory(c *gin.Context) {
	facts, err := ctl.store.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to get memory", nil).AsGinResponse())
		return
	}

	mem := memory.Fold(facts)
	resp := sdk.Memory{
		Name:        mem.Name,
		Preferences: mem.Preferences,
		Context:     mem.Context,
	}
	if resp.Preferences == nil {
		resp.Preferences = []string{}
	}
	if resp.Context == nil {
		resp.Context = []string{}
	}

	c.JSON(sdk.NewSuccessResponse("Memory retrieved successfully", resp).AsGinResponse())
}
