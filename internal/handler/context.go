package handler

type ContextKey string

var (
	RoleCtxKey    ContextKey = "role"
	SubCtxKey     ContextKey = "sub"
	PlayerInfoCtx ContextKey = "playerInfo"
)
