package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/leontief-backend/internal/http/response"
	"github.com/yungbote/leontief-backend/internal/platform/apierr"
	"github.com/yungbote/leontief-backend/internal/services"
)

type WorkspaceHandler struct {
	workspaceService services.WorkspaceService
}

func NewWorkspaceHandler(workspaceService services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

// POST /api/models/:model_id/clone
func (wh *WorkspaceHandler) Clone(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if ref.IsWorkspace() {
		response.RespondServiceError(c, apierr.New(http.StatusBadRequest, "invalid_model_id", fmt.Errorf("only permanent models can be cloned")))
		return
	}
	ws, err := wh.workspaceService.Clone(dbcOf(c), principal(c), ref.ID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"model": ws})
}

// POST /api/models/:model_id/persist
func (wh *WorkspaceHandler) Persist(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if !ref.IsWorkspace() {
		response.RespondServiceError(c, apierr.New(http.StatusBadRequest, "invalid_model_id", fmt.Errorf("only workspaces can be persisted")))
		return
	}
	m, err := wh.workspaceService.Persist(dbcOf(c), principal(c), ref.ID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"model": m})
}

// GET /api/workspaces
func (wh *WorkspaceHandler) ListMine(c *gin.Context) {
	list, err := wh.workspaceService.ListMine(dbcOf(c), principal(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"workspaces": list})
}
