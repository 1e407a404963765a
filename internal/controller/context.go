package controller

import "context"

type contextKey int

const connIdCtxKey contextKey = iota

func (c controller) getConnIdFromCtx(ctx context.Context) string {
	connId, ok := ctx.Value(connIdCtxKey).(string)
	if !ok {
		return ""
	}

	return connId
}
