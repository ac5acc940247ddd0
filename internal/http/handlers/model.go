package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/leontief-backend/internal/http/response"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
	"github.com/yungbote/leontief-backend/internal/platform/apierr"
	"github.com/yungbote/leontief-backend/internal/services"
)

type ModelHandler struct {
	modelService services.ModelService
}

func NewModelHandler(modelService services.ModelService) *ModelHandler {
	return &ModelHandler{modelService: modelService}
}

// GET /api/models
func (mh *ModelHandler) List(c *gin.Context) {
	models, err := mh.modelService.List(dbcOf(c), principal(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"models": models})
}

// POST /api/models
// body: { "name": "...", "description": "...", "role_ids": [..] }
func (mh *ModelHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		RoleIDs     []uint `json:"role_ids"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, err := mh.modelService.Create(dbcOf(c), principal(c), services.CreateModelInput{
		Name:        req.Name,
		Description: req.Description,
		RoleIDs:     req.RoleIDs,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"model": m})
}

// GET /api/models/:model_id
func (mh *ModelHandler) Get(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, err := mh.modelService.Get(dbcOf(c), principal(c), ref)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model": m})
}

// PATCH /api/models/:model_id
// body: { "name": "...", "description": "..." }
func (mh *ModelHandler) UpdateMeta(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, err := mh.modelService.UpdateMeta(dbcOf(c), principal(c), ref, services.ModelMetaPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model": m})
}

// DELETE /api/models/:model_id
func (mh *ModelHandler) Delete(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if err := mh.modelService.Delete(dbcOf(c), principal(c), ref); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PUT /api/models/:model_id/roles
// body: { "role_ids": [..] }
func (mh *ModelHandler) SetRoles(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if ref.IsWorkspace() {
		response.RespondServiceError(c, apierr.New(http.StatusBadRequest, "invalid_model_id", fmt.Errorf("workspaces carry no roles")))
		return
	}
	var req struct {
		RoleIDs []uint `json:"role_ids"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, err := mh.modelService.SetRoles(dbcOf(c), principal(c), ref.ID, req.RoleIDs)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model": m})
}

type matrixRequest struct {
	Matrix *matrix.Dense `json:"matrix"`
}

func (r matrixRequest) value() (matrix.Dense, error) {
	if r.Matrix == nil {
		return matrix.Dense{}, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("matrix is required"))
	}
	return *r.Matrix, nil
}

// PUT /api/models/:model_id/economic
// body: { "matrix": [[...], ...] }
func (mh *ModelHandler) SetEconomic(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req matrixRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	a, err := req.value()
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, err := mh.modelService.SetEconomicMatrix(dbcOf(c), principal(c), ref, a)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model": m})
}

// PUT /api/models/:model_id/impact
// body: { "matrix": [[...], ...] }
func (mh *ModelHandler) SetImpact(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req matrixRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	cm, err := req.value()
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, err := mh.modelService.SetImpactMatrix(dbcOf(c), principal(c), ref, cm)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model": m})
}

// POST /api/models/:model_id/export
func (mh *ModelHandler) Export(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	res, err := mh.modelService.Export(dbcOf(c), principal(c), ref)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"export": res})
}
