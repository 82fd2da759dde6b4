package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"tostaduria-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const notifyChannel = "ledger_changes"

// WithCredential funde la credencial del perfil dentro del DSN del
// endpoint. Con URLs postgres:// la credencial pasa a ser la contraseña;
// con cadenas clave=valor se agrega como password. Credencial vacía deja
// el endpoint intacto.
func WithCredential(endpoint, credential string) string {
	if credential == "" {
		return endpoint
	}
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		user := ""
		if u.User != nil {
			user = u.User.Username()
		}
		u.User = url.UserPassword(user, credential)
		return u.String()
	}
	return endpoint + " password=" + credential
}

// PostgresRemote habla con el almacén remoto compartido: gorm para
// upsert/fetch y una conexión pgx dedicada para LISTEN/NOTIFY.
type PostgresRemote struct {
	db  *gorm.DB
	dsn string
	log *zap.Logger
}

// DialPostgres conecta, espeja el esquema del libro y deja instalados los
// triggers de notificación. La instalación es idempotente.
func DialPostgres(dsn string, log *zap.Logger) (*PostgresRemote, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("no se pudo conectar al almacén remoto: %w", err)
	}
	for _, c := range store.Collections {
		if err := db.AutoMigrate(c.Model()); err != nil {
			return nil, fmt.Errorf("migrando tabla remota %s: %w", c.Table, err)
		}
	}
	r := &PostgresRemote{db: db, dsn: dsn, log: log}
	if err := r.installTriggers(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PostgresRemote) installTriggers() error {
	fn := fmt.Sprintf(`
CREATE OR REPLACE FUNCTION ledger_notify_change() RETURNS trigger AS $$
BEGIN
  PERFORM pg_notify('%s', json_build_object('table', TG_TABLE_NAME, 'id', NEW.id)::text);
  RETURN NEW;
END;
$$ LANGUAGE plpgsql`, notifyChannel)
	if err := r.db.Exec(fn).Error; err != nil {
		return fmt.Errorf("instalando función de notificación: %w", err)
	}
	for _, c := range store.Collections {
		drop := fmt.Sprintf("DROP TRIGGER IF EXISTS %s_ledger_notify ON %s", c.Table, c.Table)
		create := fmt.Sprintf(
			"CREATE TRIGGER %s_ledger_notify AFTER INSERT OR UPDATE ON %s FOR EACH ROW EXECUTE FUNCTION ledger_notify_change()",
			c.Table, c.Table)
		if err := r.db.Exec(drop).Error; err != nil {
			return fmt.Errorf("reinstalando trigger de %s: %w", c.Table, err)
		}
		if err := r.db.Exec(create).Error; err != nil {
			return fmt.Errorf("creando trigger de %s: %w", c.Table, err)
		}
	}
	return nil
}

func (r *PostgresRemote) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgresRemote) FetchAll(ctx context.Context, c store.Collection) (any, error) {
	slice := c.Slice()
	if err := r.db.WithContext(ctx).Table(c.Table).Find(slice).Error; err != nil {
		return nil, fmt.Errorf("leyendo tabla remota %s: %w", c.Table, err)
	}
	return slice, nil
}

func (r *PostgresRemote) FetchOne(ctx context.Context, table, id string, dest any) (bool, error) {
	res := r.db.WithContext(ctx).Table(table).Where("id = ?", id).Limit(1).Find(dest)
	if res.Error != nil {
		return false, fmt.Errorf("leyendo %s/%s remoto: %w", table, id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresRemote) Upsert(ctx context.Context, table string, rec any) error {
	err := r.db.WithContext(ctx).Table(table).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(rec).Error
	if err != nil {
		return fmt.Errorf("upsert remoto en %s: %w", table, err)
	}
	return nil
}

func (r *PostgresRemote) Listen(ctx context.Context, handler func(ChangeEvent)) error {
	conn, err := pgx.Connect(ctx, r.dsn)
	if err != nil {
		return fmt.Errorf("abriendo conexión de escucha: %w", err)
	}
	defer func() { _ = conn.Close(context.Background()) }()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("suscribiendo al canal %s: %w", notifyChannel, err)
	}
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var ev ChangeEvent
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			r.log.Warn("payload de notificación ilegible", zap.String("payload", n.Payload))
			continue
		}
		handler(ev)
	}
}

func (r *PostgresRemote) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
