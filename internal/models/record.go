package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Record es lo mínimo que el reconciliador necesita de cada entidad para
// aplicar upserts por clave primaria y resolver conflictos por fecha.
type Record interface {
	PrimaryID() string
	LastUpdated() time.Time
}

// StringList se guarda como JSON en una columna de texto (sqlite y postgres).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		if v == "" {
			*l = nil
			return nil
		}
		return json.Unmarshal([]byte(v), l)
	case []byte:
		if len(v) == 0 {
			*l = nil
			return nil
		}
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("StringList: tipo de columna inesperado %T", src)
	}
}
