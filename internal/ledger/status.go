package ledger

import "tostaduria-backend/internal/models"

// transitions: desde cada estado, a cuáles se puede pasar. Pendiente y
// En Producción además se alcanzan hacia atrás desde su sucesor inmediato
// (reversa manual). Facturado es terminal.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPendiente:     {models.StatusEnProduccion},
	models.StatusEnProduccion:  {models.StatusListoDespacho, models.StatusPendiente},
	models.StatusListoDespacho: {models.StatusEnviado, models.StatusEnProduccion},
	models.StatusEnviado:       {models.StatusFacturado},
	models.StatusFacturado:     {},
}

// CanTransition consulta la tabla de transiciones.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// applyStatus fija el estado y sus efectos sobre el avance: entrar a
// Listo para Despacho siempre deja progress=100; volver a Pendiente o
// En Producción lo reinicia a 0.
func applyStatus(o *models.Order, to models.OrderStatus) {
	o.Status = to
	switch to {
	case models.StatusPendiente, models.StatusEnProduccion:
		o.Progress = 0
	case models.StatusListoDespacho:
		o.Progress = 100
	}
}
