package llm

import (
	"context"

	"github.com/nkapoor/docuchat/internal/domain/commonModels"
)

// Provider is the generation gateway. The caller composes the full prompt;
// history is the session transcript so far, oldest first. Transport or auth
// failures come back wrapped as ragerr.ErrGateway.
type Provider interface {
	Generate(ctx context.Context, prompt string, history []commonModels.Turn) (string, error)
}
