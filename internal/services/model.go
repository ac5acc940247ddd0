package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/leontief-backend/internal/access"
	"github.com/yungbote/leontief-backend/internal/data/repos"
	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/engine"
	"github.com/yungbote/leontief-backend/internal/observability"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
	"github.com/yungbote/leontief-backend/internal/pkg/pointers"
	"github.com/yungbote/leontief-backend/internal/platform/blob"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type CreateModelInput struct {
	Name        string
	Description string
	RoleIDs     []uint
}

type ModelMetaPatch struct {
	Name        *string
	Description *string
}

type ModelService interface {
	List(dbc dbctx.Context, p access.Principal) ([]ModelSummary, error)
	Get(dbc dbctx.Context, p access.Principal, ref types.ModelRef) (*ModelView, error)
	Create(dbc dbctx.Context, p access.Principal, in CreateModelInput) (*ModelView, error)
	UpdateMeta(dbc dbctx.Context, p access.Principal, ref types.ModelRef, patch ModelMetaPatch) (*ModelView, error)
	SetRoles(dbc dbctx.Context, p access.Principal, modelID uint, roleIDs []uint) (*ModelView, error)
	Delete(dbc dbctx.Context, p access.Principal, ref types.ModelRef) error

	InsertSector(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int, in engine.SectorInput) (*ModelView, error)
	DeleteSector(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int) (*ModelView, error)
	ModifySector(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int, patch engine.SectorPatch) (*ModelView, error)
	InsertCategory(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int, in engine.CategoryInput) (*ModelView, error)
	DeleteCategory(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int) (*ModelView, error)
	ModifyCategory(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int, patch engine.CategoryPatch) (*ModelView, error)
	SetEconomicMatrix(dbc dbctx.Context, p access.Principal, ref types.ModelRef, a matrix.Dense) (*ModelView, error)
	SetImpactMatrix(dbc dbctx.Context, p access.Principal, ref types.ModelRef, c matrix.Dense) (*ModelView, error)

	Export(dbc dbctx.Context, p access.Principal, ref types.ModelRef) (*ExportResult, error)
}

type modelService struct {
	db      *gorm.DB
	log     *logger.Logger
	store   *modelStore
	roles   repos.RoleRepo
	blobs   blob.Store
	metrics *observability.Metrics
}

func NewModelService(
	db *gorm.DB,
	log *logger.Logger,
	resolver *access.Resolver,
	modelRepo repos.ModelRepo,
	workspaceRepo repos.WorkspaceRepo,
	sectorRepo repos.SectorRepo,
	categoryRepo repos.CategoryRepo,
	roleRepo repos.RoleRepo,
	blobs blob.Store,
	metrics *observability.Metrics,
) ModelService {
	return &modelService{
		db:  db,
		log: log.With("service", "ModelService"),
		store: &modelStore{
			db:         db,
			resolver:   resolver,
			models:     modelRepo,
			workspaces: workspaceRepo,
			sectors:    sectorRepo,
			categories: categoryRepo,
		},
		roles:   roleRepo,
		blobs:   blobs,
		metrics: metrics,
	}
}

func (ms *modelService) List(dbc dbctx.Context, p access.Principal) ([]ModelSummary, error) {
	all, err := ms.store.models.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	visible := access.Filter(ms.store.resolver, p, all, func(m *types.Model) []uint { return m.RoleIDs() })
	out := make([]ModelSummary, 0, len(visible))
	for _, m := range visible {
		out = append(out, summarizeModel(m))
	}
	return out, nil
}

func (ms *modelService) Get(dbc dbctx.Context, p access.Principal, ref types.ModelRef) (*ModelView, error) {
	t, err := ms.store.consistent(dbc, p, ref)
	if err != nil {
		return nil, err
	}
	return t.view(), nil
}

func (ms *modelService) Create(dbc dbctx.Context, p access.Principal, in CreateModelInput) (*ModelView, error) {
	if !ms.store.resolver.IsAdmin(p) {
		return nil, fmt.Errorf("create model requires admin: %w", pkgerrors.ErrUnauthorized)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("model name is required: %w", pkgerrors.ErrInvalidArgument)
	}

	var out *ModelView
	err := ms.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		roles, err := resolveRoles(inner, ms.roles, in.RoleIDs)
		if err != nil {
			return err
		}
		a, l, c := emptySnapshotMatrices()
		m := &types.Model{
			Name:           name,
			Description:    in.Description,
			EconomicMatrix: a,
			LeontiefMatrix: l,
			ImpactMatrix:   c,
		}
		if err := ms.store.models.Create(inner, m); err != nil {
			return fmt.Errorf("create model: %w", err)
		}
		if err := ms.store.models.ReplaceRoles(inner, m, roles); err != nil {
			return fmt.Errorf("set model roles: %w", err)
		}
		m.Roles = roles
		out = (&target{ref: m.Ref(), model: m}).view()
		return nil
	})
	if err != nil {
		return nil, err
	}
	ms.log.Info("model created", "model_id", out.ID, "roles", len(in.RoleIDs))
	return out, nil
}

func (ms *modelService) UpdateMeta(dbc dbctx.Context, p access.Principal, ref types.ModelRef, patch ModelMetaPatch) (*ModelView, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("model name cannot be empty: %w", pkgerrors.ErrInvalidArgument)
	}
	var out *ModelView
	err := ms.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		t, err := ms.store.writable(inner, p, ref)
		if err != nil {
			return err
		}
		applyMeta(t, patch)
		if err := ms.store.save(inner, t, t.snapshot()); err != nil {
			return fmt.Errorf("update %s: %w", ref, err)
		}
		out = t.view()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func applyMeta(t *target, patch ModelMetaPatch) {
	var name, desc *string
	if t.workspace != nil {
		name, desc = &t.workspace.Name, &t.workspace.Description
	} else {
		name, desc = &t.model.Name, &t.model.Description
	}
	if patch.Name != nil {
		*name = strings.TrimSpace(*patch.Name)
	}
	*desc = pointers.Deref(patch.Description, *desc)
}

func (ms *modelService) SetRoles(dbc dbctx.Context, p access.Principal, modelID uint, roleIDs []uint) (*ModelView, error) {
	ref := types.Permanent(modelID)
	var out *ModelView
	err := ms.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		t, err := ms.store.writable(inner, p, ref)
		if err != nil {
			return err
		}
		roles, err := resolveRoles(inner, ms.roles, roleIDs)
		if err != nil {
			return err
		}
		if err := ms.store.models.ReplaceRoles(inner, t.model, roles); err != nil {
			return fmt.Errorf("set roles of %s: %w", ref, err)
		}
		t.model.Roles = roles
		out = t.view()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a permanent model (admin) or discards a workspace (owner or
// admin).
func (ms *modelService) Delete(dbc dbctx.Context, p access.Principal, ref types.ModelRef) error {
	return ms.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		t, err := ms.store.writable(inner, p, ref)
		if err != nil {
			return err
		}
		if t.workspace != nil {
			err = ms.store.workspaces.Delete(inner, t.workspace.ID)
		} else {
			err = ms.store.models.Delete(inner, t.model.ID)
		}
		if err != nil {
			return fmt.Errorf("delete %s: %w", ref, err)
		}
		ms.log.Info("model deleted", "model_id", ref.Encode())
		return nil
	})
}

func (ms *modelService) InsertSector(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int, in engine.SectorInput) (*ModelView, error) {
	return ms.mutate(dbc, p, ref, "insert sector", true, func(s engine.Snapshot) (engine.Snapshot, error) {
		return engine.InsertSector(s, pos, in)
	})
}

func (ms *modelService) DeleteSector(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int) (*ModelView, error) {
	return ms.mutate(dbc, p, ref, "delete sector", true, func(s engine.Snapshot) (engine.Snapshot, error) {
		return engine.DeleteSector(s, pos)
	})
}

func (ms *modelService) ModifySector(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int, patch engine.SectorPatch) (*ModelView, error) {
	return ms.mutate(dbc, p, ref, "modify sector", false, func(s engine.Snapshot) (engine.Snapshot, error) {
		return engine.ModifySector(s, pos, patch)
	})
}

func (ms *modelService) InsertCategory(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int, in engine.CategoryInput) (*ModelView, error) {
	return ms.mutate(dbc, p, ref, "insert category", false, func(s engine.Snapshot) (engine.Snapshot, error) {
		return engine.InsertCategory(s, pos, in)
	})
}

func (ms *modelService) DeleteCategory(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int) (*ModelView, error) {
	return ms.mutate(dbc, p, ref, "delete category", false, func(s engine.Snapshot) (engine.Snapshot, error) {
		return engine.DeleteCategory(s, pos)
	})
}

func (ms *modelService) ModifyCategory(dbc dbctx.Context, p access.Principal, ref types.ModelRef, pos int, patch engine.CategoryPatch) (*ModelView, error) {
	return ms.mutate(dbc, p, ref, "modify category", false, func(s engine.Snapshot) (engine.Snapshot, error) {
		return engine.ModifyCategory(s, pos, patch)
	})
}

func (ms *modelService) SetEconomicMatrix(dbc dbctx.Context, p access.Principal, ref types.ModelRef, a matrix.Dense) (*ModelView, error) {
	return ms.mutate(dbc, p, ref, "set economic matrix", true, func(s engine.Snapshot) (engine.Snapshot, error) {
		return engine.SetEconomicMatrix(s, a)
	})
}

func (ms *modelService) SetImpactMatrix(dbc dbctx.Context, p access.Principal, ref types.ModelRef, c matrix.Dense) (*ModelView, error) {
	return ms.mutate(dbc, p, ref, "set impact matrix", false, func(s engine.Snapshot) (engine.Snapshot, error) {
		return engine.SetImpactMatrix(s, c)
	})
}

// mutate loads ref for writing, applies fn to its snapshot and persists the
// result, all in one transaction. Nothing is written when fn fails.
func (ms *modelService) mutate(
	dbc dbctx.Context,
	p access.Principal,
	ref types.ModelRef,
	op string,
	inverts bool,
	fn func(engine.Snapshot) (engine.Snapshot, error),
) (*ModelView, error) {
	var out *ModelView
	err := ms.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		t, err := ms.store.writable(inner, p, ref)
		if err != nil {
			return err
		}
		start := time.Now()
		next, err := fn(t.snapshot())
		if inverts {
			ms.metrics.ObserveInversion(inversionResult(err), time.Since(start))
		}
		if err != nil {
			return err
		}
		if err := ms.store.save(inner, t, next); err != nil {
			return fmt.Errorf("%s on %s: %w", op, ref, err)
		}
		out = t.view()
		return nil
	})
	if err != nil {
		ms.log.Debug("model mutation rejected", "op", op, "model_id", ref.Encode(), "error", err)
		return nil, err
	}
	return out, nil
}
