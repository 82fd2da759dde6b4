package syncer

import "tostaduria-backend/internal/models"

// ConflictPolicy decide si un registro entrante reemplaza la copia local.
// Es una estrategia inyectable: la política base es último-escritor-gana,
// y se puede cambiar sin tocar las operaciones de dominio.
type ConflictPolicy func(incoming, local models.Record) bool

// LastWriteWins acepta el registro entrante solo si su marca de tiempo es
// estrictamente más nueva que la copia local. El empate se descarta, lo
// que de paso suprime el eco de los push propios del dispositivo.
func LastWriteWins(incoming, local models.Record) bool {
	if local == nil {
		return true
	}
	return incoming.LastUpdated().After(local.LastUpdated())
}
