package store

import (
	"fmt"
	"sync"

	"tostaduria-backend/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Event describe una mutación local confirmada. El reconciliador se suscribe
// para empujar el registro al almacén remoto; los borrados físicos no se
// propagan (divergencia documentada en DESIGN.md).
type Event struct {
	Table   string
	ID      string
	Deleted bool
}

// Store es el almacén local de entidades: la fuente de verdad de la UI en
// todo momento, también sin conexión. Se pasa por referencia a todas las
// operaciones de dominio; no hay estado global.
type Store struct {
	db  *gorm.DB
	log *zap.Logger

	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// Open abre (o crea) el archivo sqlite local y migra el esquema.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir la base local: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log, subs: map[int]chan Event{}}, nil
}

// OpenMemory abre un almacén en memoria, para pruebas.
func OpenMemory() (*Store, error) {
	return Open(":memory:", zap.NewNop())
}

// Migrate crea/actualiza las tablas del libro. También lo usa el
// reconciliador para preparar el esquema remoto.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.GreenCoffeeLot{},
		&models.Roast{},
		&models.RoastedStock{},
		&models.RetailBagStock{},
		&models.Order{},
		&models.Expense{},
		&models.ProductionItem{},
		&models.Setting{},
	)
	if err != nil {
		return fmt.Errorf("error de AutoMigrate: %w", err)
	}
	return nil
}

// DB expone el gorm.DB subyacente para las consultas de lectura.
func (s *Store) DB() *gorm.DB { return s.db }

// Commit ejecuta fn dentro de una transacción y, solo si confirma, publica
// los eventos devueltos. Toda operación de dominio pasa por aquí: o queda
// entera o no queda nada.
func (s *Store) Commit(fn func(tx *gorm.DB) ([]Event, error)) error {
	var events []Event
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		events, err = fn(tx)
		return err
	})
	if err != nil {
		return err
	}
	s.publish(events)
	return nil
}

// Subscribe registra un oyente de mutaciones locales. La entrega es
// asíncrona y nunca bloquea un commit: si el canal se llena el evento se
// descarta con un log y el registro no se empuja hasta que la fila vuelva
// a mutar o hasta el próximo pull completo.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan Event, buffer)
	s.subs[id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Store) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		for _, ch := range s.subs {
			select {
			case ch <- ev:
			default:
				s.log.Warn("oyente saturado, evento descartado",
					zap.String("table", ev.Table), zap.String("id", ev.ID))
			}
		}
	}
}

// ApplyRemote aplica un registro llegado del almacén remoto (pull o stream).
// No publica eventos: lo remoto nunca se re-empuja.
func (s *Store) ApplyRemote(table string, rec any) error {
	return s.db.Table(table).Clauses(clause.OnConflict{UpdateAll: true}).Create(rec).Error
}

// ApplyRemoteSlice hace upsert masivo de una colección remota completa
// (política de pull: gana lo remoto, clave por id).
func (s *Store) ApplyRemoteSlice(table string, slicePtr any) error {
	return s.db.Table(table).Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(slicePtr, 200).Error
}

// --- Settings (clave/valor local del dispositivo) ---

func (s *Store) GetSetting(key string) (string, error) {
	var st models.Setting
	err := s.db.First(&st, "key = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return st.Value, nil
}

func (s *Store) PutSetting(key, value string) error {
	st := models.Setting{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&st).Error
}
