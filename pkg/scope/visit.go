package scope

import "context"

type visitKey struct{}

// visit is one scope on the chain of lookups in progress for a request.
type visit struct {
	scope *Scope
	next  *visit
}

// enter records s as being resolved in ctx.
func enter(ctx context.Context, s *Scope) context.Context {
	next, _ := ctx.Value(visitKey{}).(*visit)
	return context.WithValue(ctx, visitKey{}, &visit{scope: s, next: next})
}

// visiting reports whether s is already being resolved further up the
// chain in ctx. Delegating to it again would loop.
func visiting(ctx context.Context, s *Scope) bool {
	for v, _ := ctx.Value(visitKey{}).(*visit); v != nil; v = v.next {
		if v.scope == s {
			return true
		}
	}
	return false
}

// nested reports whether ctx belongs to a lookup delegated from another
// scope.
func nested(ctx context.Context) bool {
	return ctx.Value(visitKey{}) != nil
}
