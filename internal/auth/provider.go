package auth

import "context"

// Identity is what a validated token resolves to. Activity state lives in
// storage, keyed by Identity.ID.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Provider interface {
	ValidateTokenLocal(token string) (*Identity, error)
	ValidateTokenRemote(ctx context.Context, token string) (*Identity, error)
}
