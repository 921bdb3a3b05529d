// internal/domain/profile/repository.go
package profile

import "context"

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	FindByID(ctx context.Context, id int64) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id int64) error
	ListActive(ctx context.Context) ([]*Profile, error)
}
