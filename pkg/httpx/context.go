package httpx

import "context"

type ctxKey string

// CtxKeySubject holds the authenticated caller as a string so generic
// middleware (rate limiting, logging) can key on it without knowing the
// identity type of the service.
const CtxKeySubject ctxKey = "subject"

// WithSubject records the authenticated caller on the context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, CtxKeySubject, subject)
}

// SubjectFrom returns the caller recorded by WithSubject, if any.
func SubjectFrom(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(CtxKeySubject).(string)
	return s, ok && s != ""
}
