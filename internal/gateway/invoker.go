package gateway

import (
	"context"

	"github.com/google/uuid"

	"subgate/internal/auth"
	"subgate/internal/downstream"
	"subgate/pkg/logging"
)

// Operation describes one proxied downstream call: the tool name for logs,
// the scope the caller's token must carry, and the downstream request to
// issue once the call is authorized.
type Operation struct {
	Name          string
	RequiredScope string
	Request       *downstream.Request
}

// Invoker runs the authorization pipeline in front of every downstream
// call. The steps are strictly ordered and short-circuit: argument
// validation happens before Invoke is called, then bearer extraction, scope
// validation, delegated token acquisition, and only then the downstream
// request. A failure at any step means the downstream API is never
// contacted for that call. There are no retries at any step.
type Invoker struct {
	validator  *auth.ScopeValidator
	tokens     *auth.DelegatedTokenSource
	downstream *downstream.Client
}

// NewInvoker creates a tool invoker.
func NewInvoker(validator *auth.ScopeValidator, tokens *auth.DelegatedTokenSource, client *downstream.Client) *Invoker {
	return &Invoker{
		validator:  validator,
		tokens:     tokens,
		downstream: client,
	}
}

// Invoke authorizes and executes one operation, returning the raw 2xx
// response body. Each invocation gets a correlation ID that appears in every
// log line it produces.
func (inv *Invoker) Invoke(ctx context.Context, op Operation) ([]byte, error) {
	callID := uuid.NewString()
	logging.Debug("Invoker", "call=%s tool=%s starting", callID, op.Name)

	bearer, err := auth.ExtractBearer(ctx)
	if err != nil {
		logging.Debug("Invoker", "call=%s tool=%s rejected: %v", callID, op.Name, err)
		return nil, err
	}

	if !inv.validator.HasRequiredScope(bearer, op.RequiredScope) {
		logging.Debug("Invoker", "call=%s tool=%s rejected: missing scope %s", callID, op.Name, op.RequiredScope)
		return nil, &auth.InsufficientScopeError{RequiredScope: op.RequiredScope}
	}

	delegated, err := inv.tokens.AccessToken(ctx)
	if err != nil {
		logging.Warn("Invoker", "call=%s tool=%s delegated token unavailable: %v", callID, op.Name, err)
		return nil, err
	}

	body, err := inv.downstream.Do(ctx, op.Request, delegated)
	if err != nil {
		logging.Debug("Invoker", "call=%s tool=%s downstream failed: %v", callID, op.Name, err)
		return nil, err
	}

	logging.Debug("Invoker", "call=%s tool=%s succeeded", callID, op.Name)
	return body, nil
}
