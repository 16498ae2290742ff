package user

import "context"

type ctxKey string

const contextUserKey ctxKey = "user"

func WithContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}

// FromContext returns the authenticated principal, or nil outside AuthMiddleware.
func FromContext(ctx context.Context) *User {
	if ctx == nil {
		return nil
	}
	u, _ := ctx.Value(contextUserKey).(*User)
	return u
}
