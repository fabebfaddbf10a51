package types

import "context"

type ContextKey string

const (
	CtxRequestID   ContextKey = "ctx_request_id"
	CtxUserID      ContextKey = "ctx_user_id"
	CtxUserEmail   ContextKey = "ctx_user_email"
	CtxAccessToken ContextKey = "ctx_access_token"
	CtxDBTx        ContextKey = "ctx_db_transaction"
)

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(CtxUserEmail).(string); ok {
		return email
	}
	return ""
}

// GetAccessToken returns the caller's bearer token, used for auth provider
// lookups made on the caller's behalf.
func GetAccessToken(ctx context.Context) string {
	if token, ok := ctx.Value(CtxAccessToken).(string); ok {
		return token
	}
	return ""
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

func SetUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, CtxUserEmail, email)
}

func SetAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CtxAccessToken, token)
}
