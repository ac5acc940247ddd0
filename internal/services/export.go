package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/yungbote/leontief-backend/internal/access"
	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
	"github.com/yungbote/leontief-backend/internal/platform/blob"
)

type ExportResult struct {
	ModelID    int64       `json:"model_id"`
	Driver     blob.Driver `json:"driver"`
	Objects    []blob.Info `json:"objects"`
	ExportedAt time.Time   `json:"exported_at"`
}

type exportManifest struct {
	ModelID    int64             `json:"model_id"`
	Name       string            `json:"name"`
	Sectors    []types.Sector    `json:"sectors"`
	Categories []types.Category  `json:"categories"`
	Matrices   map[string][2]int `json:"matrices"`
	ExportedAt time.Time         `json:"exported_at"`
}

// Export writes the three matrices in their binary form plus a JSON
// manifest under models/<id>/. Re-exporting overwrites.
func (ms *modelService) Export(dbc dbctx.Context, p access.Principal, ref types.ModelRef) (*ExportResult, error) {
	if !p.IsAuthenticated() {
		return nil, fmt.Errorf("export requires a signed-in user: %w", pkgerrors.ErrUnauthorized)
	}
	if ms.blobs == nil {
		return nil, fmt.Errorf("export storage is not configured: %w", pkgerrors.ErrInvalidArgument)
	}
	t, err := ms.store.consistent(dbc, p, ref)
	if err != nil {
		return nil, err
	}
	view := t.view()
	prefix := "models/" + strconv.FormatInt(view.ID, 10) + "/"
	now := time.Now().UTC()

	mats := []struct {
		name string
		m    matrix.Dense
	}{
		{"economic", view.EconomicMatrix},
		{"leontief", view.LeontiefMatrix},
		{"impact", view.ImpactMatrix},
	}
	res := &ExportResult{ModelID: view.ID, Driver: ms.blobs.Driver(), ExportedAt: now}
	manifest := exportManifest{
		ModelID:    view.ID,
		Name:       view.Name,
		Sectors:    view.Sectors,
		Categories: view.Categories,
		Matrices:   map[string][2]int{},
		ExportedAt: now,
	}
	ctx := ctxOf(dbc)
	for _, mt := range mats {
		raw, err := mt.m.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("encode %s matrix: %w", mt.name, err)
		}
		info, err := ms.blobs.Put(ctx, prefix+mt.name+".bin", bytes.NewReader(raw), blob.PutOptions{
			ContentType: "application/octet-stream",
			Metadata: map[string]string{
				"rows": strconv.Itoa(mt.m.Rows()),
				"cols": strconv.Itoa(mt.m.Cols()),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("store %s matrix: %w", mt.name, err)
		}
		manifest.Matrices[mt.name] = [2]int{mt.m.Rows(), mt.m.Cols()}
		res.Objects = append(res.Objects, info)
	}

	body, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	info, err := ms.blobs.Put(ctx, prefix+"manifest.json", bytes.NewReader(body), blob.PutOptions{ContentType: "application/json"})
	if err != nil {
		return nil, fmt.Errorf("store manifest: %w", err)
	}
	res.Objects = append(res.Objects, info)
	ms.log.Info("model exported", "model_id", view.ID, "driver", string(res.Driver))
	return res, nil
}
