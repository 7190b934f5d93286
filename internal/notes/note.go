// Package notes define a nota, suas regras de validação e o serviço de CRUD.
package notes

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound é devolvido quando nenhuma nota tem o ID pedido.
var ErrNotFound = errors.New("note not found")

type Note struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input é o corpo de criação/atualização. Campos nil não foram enviados.
type Input struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Repository persiste notas. Get, Update e Delete devolvem ErrNotFound
// quando o ID não existe.
type Repository interface {
	List(ctx context.Context) ([]Note, error)
	Get(ctx context.Context, id string) (Note, error)
	Create(ctx context.Context, n Note) (Note, error)
	Update(ctx context.Context, n Note) (Note, error)
	Delete(ctx context.Context, id string) error
}
