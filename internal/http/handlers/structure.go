package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/leontief-backend/internal/engine"
	"github.com/yungbote/leontief-backend/internal/http/response"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
)

// POST /api/models/:model_id/sectors
// body: { "pos": 0, "name": "...", "value_added": 0, "outgoing": [..],
// "incoming": [..], "impact": [..], "policy": "self_in_row" }
func (mh *ModelHandler) InsertSector(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req struct {
		Pos        int       `json:"pos"`
		Name       string    `json:"name"`
		ValueAdded float64   `json:"value_added"`
		Outgoing   []float64 `json:"outgoing"`
		Incoming   []float64 `json:"incoming"`
		Impact     []float64 `json:"impact"`
		Policy     string    `json:"policy"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	policy, err := matrix.ParseSelfCoefficientPolicy(req.Policy)
	if err != nil {
		response.RespondServiceError(c, engine.Translate("insert sector", err))
		return
	}
	m, err := mh.modelService.InsertSector(dbcOf(c), principal(c), ref, req.Pos, engine.SectorInput{
		Name:       req.Name,
		ValueAdded: req.ValueAdded,
		Outgoing:   req.Outgoing,
		Incoming:   req.Incoming,
		Impact:     req.Impact,
		Policy:     policy,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model": m})
}

// PATCH /api/models/:model_id/sectors/:pos
func (mh *ModelHandler) ModifySector(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	pos, err := posParam(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req struct {
		Name       *string  `json:"name"`
		ValueAdded *float64 `json:"value_added"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, err := mh.modelService.ModifySector(dbcOf(c), principal(c), ref, pos, engine.SectorPatch{
		Name:       req.Name,
		ValueAdded: req.ValueAdded,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model": m})
}

// DELETE /api/models/:model_id/sectors/:pos
func (mh *ModelHandler) DeleteSector(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	pos, err := posParam(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, err := mh.modelService.DeleteSector(dbcOf(c), principal(c), ref, pos)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model": m})
}

// POST /api/models/:model_id/categories
// body: { "pos": 0, "name": "...", "description": "...", "unit": "...", "impact": [..] }
func (mh *ModelHandler) InsertCategory(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req struct {
		Pos         int       `json:"pos"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Unit        string    `json:"unit"`
		Impact      []float64 `json:"impact"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, err := mh.modelService.InsertCategory(dbcOf(c), principal(c), ref, req.Pos, engine.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
		Impact:      req.Impact,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model": m})
}

// PATCH /api/models/:model_id/categories/:pos
func (mh *ModelHandler) ModifyCategory(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	pos, err := posParam(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Unit        *string `json:"unit"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, err := mh.modelService.ModifyCategory(dbcOf(c), principal(c), ref, pos, engine.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model": m})
}

// DELETE /api/models/:model_id/categories/:pos
func (mh *ModelHandler) DeleteCategory(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	pos, err := posParam(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	m, err := mh.modelService.DeleteCategory(dbcOf(c), principal(c), ref, pos)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"model": m})
}
