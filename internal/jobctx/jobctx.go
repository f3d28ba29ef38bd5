package jobctx

import "context"

type key int

const (
	JobIDKey key = iota
	UserIDKey
)

func With(ctx context.Context, jobID, userID string) context.Context {
	ctx = context.WithValue(ctx, JobIDKey, jobID)
	return context.WithValue(ctx, UserIDKey, userID)
}

func JobID(ctx context.Context) string {
	if id, ok := ctx.Value(JobIDKey).(string); ok {
		return id
	}
	return ""
}

func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}
