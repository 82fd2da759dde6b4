// Package syncer reconcilia el almacén local con el almacén remoto
// compartido. Modelo local-first: toda operación de dominio confirma
// localmente antes de cualquier intento remoto; lo remoto es aditivo a la
// corrección local, nunca una precondición.
package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/store"

	"go.uber.org/zap"
)

// reconnectDelay separa los reintentos del canal de cambios.
const reconnectDelay = 10 * time.Second

type Reconciler struct {
	store  *store.Store
	remote Remote
	policy ConflictPolicy
	log    *zap.Logger

	connected atomic.Bool

	mu      sync.Mutex
	pending map[store.Event]struct{} // push fallidos, a reintentar

	cancelSub func()
}

type Option func(*Reconciler)

// WithConflictPolicy reemplaza la política último-escritor-gana.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(r *Reconciler) { r.policy = p }
}

func New(s *store.Store, remote Remote, log *zap.Logger, opts ...Option) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Reconciler{
		store:   s,
		remote:  remote,
		policy:  LastWriteWins,
		log:     log,
		pending: map[store.Event]struct{}{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start hace el pull inicial y levanta el push asíncrono y la escucha del
// canal de cambios. Si el pull inicial falla, el sistema sigue puramente
// local y devuelve el error solo a título informativo: la nube nunca
// bloquea una operación.
func (r *Reconciler) Start(ctx context.Context) error {
	events, cancel := r.store.Subscribe(1024)
	r.cancelSub = cancel
	go r.pushLoop(ctx, events)

	if err := r.Pull(ctx); err != nil {
		r.connected.Store(false)
		r.log.Warn("pull inicial fallido, operando sin nube", zap.Error(err))
		go r.listenLoop(ctx)
		return err
	}
	r.connected.Store(true)
	go r.listenLoop(ctx)
	return nil
}

// Stop corta la suscripción a mutaciones locales.
func (r *Reconciler) Stop() {
	if r.cancelSub != nil {
		r.cancelSub()
	}
}

// Pull descarga todas las tablas remotas y las funde en el almacén local.
// Política de merge del pull: gana lo remoto, upsert por clave primaria.
// Es idempotente: un pull repetido reaplica los mismos upserts.
func (r *Reconciler) Pull(ctx context.Context) error {
	for _, c := range store.Collections {
		slice, err := r.remote.FetchAll(ctx, c)
		if err != nil {
			return err
		}
		if len(c.Records(slice)) == 0 {
			continue
		}
		if err := r.store.ApplyRemoteSlice(c.Table, slice); err != nil {
			return err
		}
	}
	pullsTotal.Inc()
	return nil
}

// Status resume el estado de la nube para la UI.
type Status struct {
	Connected bool `json:"connected"`
	Pending   int  `json:"pending_pushes"`
}

func (r *Reconciler) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{Connected: r.connected.Load(), Pending: len(r.pending)}
}

// pushLoop empuja cada mutación local confirmada. Un push fallido se
// registra y queda en la cola; nunca revierte el commit local ni le
// importa al llamador de la operación.
func (r *Reconciler) pushLoop(ctx context.Context, events <-chan store.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.pushEvent(ctx, ev)
		}
	}
}

func (r *Reconciler) pushEvent(ctx context.Context, ev store.Event) {
	if ev.Deleted {
		// los borrados físicos por agotamiento no se espejan en remoto
		// (divergencia documentada, ver DESIGN.md)
		return
	}
	if err := r.push(ctx, ev); err != nil {
		pushFailures.Inc()
		r.connected.Store(false)
		r.log.Warn("push fallido, encolado para reintento",
			zap.String("table", ev.Table), zap.String("id", ev.ID), zap.Error(err))
		r.mu.Lock()
		r.pending[ev] = struct{}{}
		r.mu.Unlock()
		return
	}
	pushesTotal.Inc()
	r.connected.Store(true)
}

func (r *Reconciler) push(ctx context.Context, ev store.Event) error {
	c, ok := store.CollectionByTable(ev.Table)
	if !ok {
		return nil
	}
	rec := c.Model()
	res := r.store.DB().Table(c.Table).Where("id = ?", ev.ID).Limit(1).Find(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// el registro se agotó y borró antes de alcanzar a empujarse
		return nil
	}
	return r.remote.Upsert(ctx, ev.Table, rec)
}

// Flush reintenta los push pendientes. Lo dispara el cron de reintento y
// la reconexión del canal de cambios.
func (r *Reconciler) Flush(ctx context.Context) {
	r.mu.Lock()
	queued := make([]store.Event, 0, len(r.pending))
	for ev := range r.pending {
		queued = append(queued, ev)
	}
	r.pending = map[store.Event]struct{}{}
	r.mu.Unlock()

	for _, ev := range queued {
		r.pushEvent(ctx, ev)
	}
}

// listenLoop mantiene viva la suscripción al canal de cambios. Tras cada
// corte reintenta: primero un pull completo para cubrir lo perdido, luego
// un flush de pendientes, y recién ahí vuelve a escuchar.
func (r *Reconciler) listenLoop(ctx context.Context) {
	for {
		if err := r.remote.Listen(ctx, func(ev ChangeEvent) { r.applyChange(ctx, ev) }); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.connected.Store(false)
			r.log.Warn("canal de cambios caído, reintentando", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
		if err := r.Pull(ctx); err != nil {
			continue
		}
		r.Flush(ctx)
		r.connected.Store(true)
	}
}

// applyChange trae la fila notificada y la aplica localmente si la
// política de conflictos la acepta.
func (r *Reconciler) applyChange(ctx context.Context, ev ChangeEvent) {
	streamEvents.Inc()
	c, ok := store.CollectionByTable(ev.Table)
	if !ok {
		r.log.Warn("cambio remoto sobre tabla desconocida", zap.String("table", ev.Table))
		return
	}
	incomingPtr := c.Model()
	found, err := r.remote.FetchOne(ctx, ev.Table, ev.ID, incomingPtr)
	if err != nil {
		r.log.Warn("no se pudo leer la fila notificada", zap.String("table", ev.Table),
			zap.String("id", ev.ID), zap.Error(err))
		return
	}
	if !found {
		return
	}
	incoming := recordOf(incomingPtr)

	localPtr := c.Model()
	res := r.store.DB().Table(c.Table).Where("id = ?", ev.ID).Limit(1).Find(localPtr)
	if res.Error != nil {
		r.log.Warn("no se pudo leer la copia local", zap.String("id", ev.ID), zap.Error(res.Error))
		return
	}
	var local models.Record
	if res.RowsAffected > 0 {
		local = recordOf(localPtr)
	}

	if !r.policy(incoming, local) {
		conflictsSkipped.Inc()
		return
	}
	if err := r.store.ApplyRemote(ev.Table, incomingPtr); err != nil {
		r.log.Warn("no se pudo aplicar el cambio remoto", zap.String("table", ev.Table),
			zap.String("id", ev.ID), zap.Error(err))
	}
}

func recordOf(ptr any) models.Record {
	rec, _ := ptr.(models.Record)
	return rec
}
