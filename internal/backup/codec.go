// Package backup serializa el almacén completo a un documento JSON
// portable y lo reimporta. Es la vía de recuperación ante desastres cuando
// no hay nube configurada; no depende del reconciliador.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tostaduria-backend/internal/store"

	"gorm.io/gorm"
)

// Document: un arreglo por colección, con la fecha de exportación.
type Document struct {
	ExportedAt  time.Time                  `json:"exported_at"`
	Collections map[string]json.RawMessage `json:"collections"`
}

// Export vuelca todas las colecciones del almacén local.
func Export(s *store.Store) (*Document, error) {
	doc := &Document{
		ExportedAt:  time.Now(),
		Collections: map[string]json.RawMessage{},
	}
	for _, c := range store.Collections {
		slice := c.Slice()
		if err := s.DB().Table(c.Table).Find(slice).Error; err != nil {
			return nil, fmt.Errorf("exportando %s: %w", c.Table, err)
		}
		raw, err := json.Marshal(slice)
		if err != nil {
			return nil, fmt.Errorf("serializando %s: %w", c.Table, err)
		}
		doc.Collections[c.Table] = raw
	}
	return doc, nil
}

// Import reemplaza el contenido completo del almacén con el documento,
// colección por colección, en una sola transacción. Las colecciones
// ausentes del documento quedan vacías: es un reemplazo total, no un merge.
func Import(s *store.Store, doc *Document) error {
	return s.DB().Transaction(func(tx *gorm.DB) error {
		for _, c := range store.Collections {
			if err := tx.Table(c.Table).Where("1 = 1").Delete(c.Model()).Error; err != nil {
				return fmt.Errorf("vaciando %s: %w", c.Table, err)
			}
			raw, ok := doc.Collections[c.Table]
			if !ok {
				continue
			}
			slice := c.Slice()
			if err := json.Unmarshal(raw, slice); err != nil {
				return fmt.Errorf("leyendo %s del respaldo: %w", c.Table, err)
			}
			if len(c.Records(slice)) == 0 {
				continue
			}
			if err := tx.Table(c.Table).CreateInBatches(slice, 200).Error; err != nil {
				return fmt.Errorf("restaurando %s: %w", c.Table, err)
			}
		}
		return nil
	})
}

// ExportToFile escribe el documento en dir con la fecha en el nombre.
// Lo usa el respaldo nocturno programado.
func ExportToFile(s *store.Store, dir string) (string, error) {
	doc, err := Export(s)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("respaldo-%s.json", doc.ExportedAt.Format("2006-01-02"))
	path := filepath.Join(dir, name)
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
