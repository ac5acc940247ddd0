package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/leontief-backend/internal/http/response"
	"github.com/yungbote/leontief-backend/internal/services"
	"github.com/yungbote/leontief-backend/internal/simulation"
)

type SimulationHandler struct {
	simulationService services.SimulationService
}

func NewSimulationHandler(simulationService services.SimulationService) *SimulationHandler {
	return &SimulationHandler{simulationService: simulationService}
}

// POST /api/models/:model_id/simulate
// body: { "values": { "0": 100 }, "change": [[...]] }
func (sh *SimulationHandler) Simulate(c *gin.Context) {
	ref, err := modelRef(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req simulation.Request
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	res, err := sh.simulationService.Simulate(c.Request.Context(), principal(c), ref, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}
