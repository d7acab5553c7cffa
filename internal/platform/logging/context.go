package logging

import "context"

type contextArgsKey struct{}

// ContextWith returns a context whose *Context log calls carry args, e.g. the
// season or match a sync unit works on. Args added later win over earlier
// ones with the same key.
func ContextWith(ctx context.Context, args ...any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(args) == 0 {
		return ctx
	}
	return context.WithValue(ctx, contextArgsKey{}, mergeArgs(contextArgs(ctx), args))
}

// mergeArgs keeps the pairs of base whose key is not set again in override.
func mergeArgs(base, override []any) []any {
	if len(base) == 0 {
		return override
	}
	merged := make([]any, 0, len(base)+len(override))
	for i := 0; i+1 < len(base); i += 2 {
		if !hasKey(override, base[i]) {
			merged = append(merged, base[i], base[i+1])
		}
	}
	return append(merged, override...)
}

func contextArgs(ctx context.Context) []any {
	args, _ := ctx.Value(contextArgsKey{}).([]any)
	if len(args) == 0 {
		return nil
	}
	return append([]any(nil), args...)
}

func hasKey(args []any, key any) bool {
	for i := 0; i < len(args); i += 2 {
		if args[i] == key {
			return true
		}
	}
	return false
}
