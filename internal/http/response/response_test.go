package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/platform/apierr"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{fmt.Errorf("model 3: %w", pkgerrors.ErrNotFound), http.StatusNotFound, "not_found", "model 3: not found"},
		{fmt.Errorf("x: %w", pkgerrors.ErrSingularMatrix), http.StatusUnprocessableEntity, "singular_matrix", ""},
		{apierr.New(http.StatusBadRequest, "invalid_model_id", fmt.Errorf("bad id")), http.StatusBadRequest, "invalid_model_id", "bad id"},
		{fmt.Errorf("dial tcp: refused"), http.StatusInternalServerError, "internal", "internal server error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		RespondServiceError(c, tc.err)

		if rec.Code != tc.status {
			t.Fatalf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		var env ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Error.Code != tc.code {
			t.Fatalf("%v: code = %q, want %q", tc.err, env.Error.Code, tc.code)
		}
		if tc.msg != "" && env.Error.Message != tc.msg {
			t.Fatalf("%v: message = %q, want %q", tc.err, env.Error.Message, tc.msg)
		}
	}
}
