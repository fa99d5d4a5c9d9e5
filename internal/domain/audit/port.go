package audit

import "context"

// Repository port for persisting and querying interactions
type Repository interface {
	Save(ctx context.Context, i *Interaction) error
	Latest(ctx context.Context, sessionID string, limit int) ([]*Interaction, error)
}
