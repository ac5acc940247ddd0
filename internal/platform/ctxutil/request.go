package ctxutil

import (
	"context"

	"github.com/yungbote/leontief-backend/internal/access"
)

type requestDataKey struct{}

// RequestData is attached by the auth middleware for every API request.
type RequestData struct {
	TokenString string
	Principal   access.Principal
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// Principal returns the caller, anonymous when nothing was attached.
func Principal(ctx context.Context) access.Principal {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.Principal
	}
	return access.AnonymousPrincipal()
}
