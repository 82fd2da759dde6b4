package syncer

import (
	"context"

	"tostaduria-backend/internal/store"
)

// ChangeEvent es la notificación mínima del canal de cambios remoto. El
// payload de pg_notify tiene un límite de tamaño, así que solo viaja la
// identidad del registro; la fila se busca aparte.
type ChangeEvent struct {
	Table string `json:"table"`
	ID    string `json:"id"`
}

// Remote abstrae el almacén remoto: upsert por id, lectura de tabla
// completa y suscripción al canal de cambios. La implementación real es
// Postgres; las pruebas usan una falsa.
type Remote interface {
	Ping(ctx context.Context) error
	// FetchAll devuelve un puntero a slice con la tabla remota completa.
	FetchAll(ctx context.Context, c store.Collection) (any, error)
	// FetchOne carga la fila id en dest; found=false si no existe.
	FetchOne(ctx context.Context, table, id string, dest any) (bool, error)
	Upsert(ctx context.Context, table string, rec any) error
	// Listen bloquea entregando eventos hasta que ctx termine o la
	// conexión se corte.
	Listen(ctx context.Context, handler func(ChangeEvent)) error
	Close() error
}
