package repository

import (
	"context"
	"io"

	"github.com/route-reconstructor/internal/domain"
)

// GPXLoader определяет методы для чтения и разбора GPX документов
type GPXLoader interface {
	// Load читает ассет по логическому имени и разбирает его
	Load(ctx context.Context, name string) (*domain.GPXDocument, error)

	// Parse разбирает GPX из произвольного источника (например, загрузки)
	Parse(ctx context.Context, name string, r io.Reader) (*domain.GPXDocument, error)

	// List возвращает имена доступных ассетов
	List(ctx context.Context) ([]string, error)
}
