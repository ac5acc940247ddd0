package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/leontief-backend/internal/access"
	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	"github.com/yungbote/leontief-backend/internal/platform/apierr"
	"github.com/yungbote/leontief-backend/internal/platform/ctxutil"
)

func principal(c *gin.Context) access.Principal {
	return ctxutil.Principal(c.Request.Context())
}

func dbcOf(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// modelRef reads :model_id as a signed external id; negative ids are
// workspaces. MinInt64 has no positive counterpart and is rejected.
func modelRef(c *gin.Context) (types.ModelRef, error) {
	raw := c.Param("model_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 || id == math.MinInt64 {
		return types.ModelRef{}, apierr.New(http.StatusBadRequest, "invalid_model_id", fmt.Errorf("invalid model id %q", raw))
	}
	return types.ParseModelRef(id), nil
}

func uintParam(c *gin.Context, name, code string) (uint, error) {
	raw := c.Param(name)
	// ids live in signed bigint columns
	id, err := strconv.ParseUint(raw, 10, 63)
	if err != nil || id == 0 {
		return 0, apierr.New(http.StatusBadRequest, code, fmt.Errorf("invalid %s %q", name, raw))
	}
	return uint(id), nil
}

func posParam(c *gin.Context) (int, error) {
	raw := c.Param("pos")
	pos, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.New(http.StatusBadRequest, "invalid_pos", fmt.Errorf("invalid pos %q", raw))
	}
	return pos, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_request", err)
	}
	return nil
}
