package models

import "time"

// Setting: preferencias locales del dispositivo (clave/valor). Aquí vive el
// perfil de conexión remota; no se sincroniza entre dispositivos.
type Setting struct {
	Key       string    `gorm:"size:60;primaryKey" json:"key"`
	Value     string    `gorm:"size:500" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Claves de settings conocidas.
const (
	SettingSyncDSN  = "sync_dsn"
	SettingSyncKey  = "sync_key"
	SettingDeviceID = "device_id"
)
