package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pushesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_sync_pushes_total",
		Help: "Registros empujados al almacén remoto con éxito.",
	})
	pushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_sync_push_failures_total",
		Help: "Push fallidos que quedaron en la cola de reintento.",
	})
	pullsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_sync_pulls_total",
		Help: "Descargas completas del almacén remoto.",
	})
	streamEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_sync_stream_events_total",
		Help: "Eventos recibidos por el canal de cambios remoto.",
	})
	conflictsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_sync_conflicts_skipped_total",
		Help: "Registros entrantes descartados por la política de conflictos.",
	})
)
