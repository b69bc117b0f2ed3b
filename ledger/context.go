package ledger

import "context"

type nonceCtxKey struct{}

// WithNonce attaches an account nonce to ctx. Execute then requires it to
// match the caller's stored nonce and consumes it in the same transaction.
func WithNonce(ctx context.Context, nonce uint64) context.Context {
	return context.WithValue(ctx, nonceCtxKey{}, nonce)
}

func NonceFromContext(ctx context.Context) (uint64, bool) {
	n, ok := ctx.Value(nonceCtxKey{}).(uint64)
	return n, ok
}
