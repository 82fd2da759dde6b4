package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort     string
	DatabasePath string // ruta del archivo sqlite local
	JWTSecret    string
	OperatorUser string
	OperatorHash string // hash bcrypt de la clave del operador
	CORSOrigins  string
	BackupDir    string // carpeta para los respaldos nocturnos

	// Perfil de conexión remota. Si falta alguno de los dos, el sistema
	// parte en modo local puro y puede tomar el perfil guardado en settings.
	SyncDSN string
	SyncKey string
}

func Load() *Config {
	// .env es opcional; en producción las variables vienen del entorno
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./tostaduria.db"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		OperatorUser: getEnv("OPERATOR_USER", "operador"),
		OperatorHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		CORSOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		BackupDir:    getEnv("BACKUP_DIR", "./respaldos"),
		SyncDSN:      getEnv("SYNC_DATABASE_DSN", ""),
		SyncKey:      getEnv("SYNC_API_KEY", ""),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET no está definido. Es obligatorio para producción.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET debe tener al menos 32 caracteres.")
	}
	if cfg.OperatorHash == "" {
		log.Println("[WARN] OPERATOR_PASSWORD_HASH no está definido, el login quedará deshabilitado.")
	}
	if cfg.SyncDSN == "" {
		log.Println("[WARN] SYNC_DATABASE_DSN no está definido, se usará el perfil guardado o modo local.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
