package usecase

import (
	"context"
	"fmt"

	"github.com/cinesync/cinesync/internal/infra/adapters/catalog"
)

// CatalogUsecase exposes the media library. Every call rescans the data
// directory.
type CatalogUsecase interface {
	Movies(ctx context.Context) (catalog.Library, error)
}

type catalogUsecase struct {
	scanner *catalog.Scanner
}

func NewCatalogUsecase(scanner *catalog.Scanner) CatalogUsecase {
	return &catalogUsecase{scanner: scanner}
}

func (u *catalogUsecase) Movies(ctx context.Context) (catalog.Library, error) {
	library, err := u.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("scan media library: %w", err)
	}

	return library, nil
}
