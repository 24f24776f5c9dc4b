package infra

import (
	"fmt"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes, mostly). TranslateError is on so
// unique-index violations surface as gorm.ErrDuplicatedKey and services can map
// them to stable conflict codes.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies the model schema plus the SQL patches. Also used by
// the testcontainers-backed integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.SesionCaja{},
		&model.Turno{},
		&model.MovimientoCaja{},
		&model.Retiro{},
		&model.Gasto{},
		&model.Arqueo{},
		&model.ArqueoDetalle{},
		&model.Venta{},
		&model.VentaPago{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// The two partial unique indexes are the concurrency backstop for the
// one-open-session-per-register and one-active-shift-per-cashier rules:
// service-level pre-checks close the common path, these close the race.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one open session per register.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_sesion_abierta') THEN
		    CREATE UNIQUE INDEX uni_sesion_abierta
		        ON sesiones_caja (punto_de_venta)
		        WHERE estado = 'abierta';
		  END IF;
		END $$`,
		// At most one active (non-closed) shift per cashier per session.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_turno_activo') THEN
		    CREATE UNIQUE INDEX uni_turno_activo
		        ON turnos (sesion_caja_id, usuario_id)
		        WHERE estado IN ('activo', 'suspendido');
		  END IF;
		END $$`,
		// Ledger reads are always per-session in chronological order.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimientos_sesion_created') THEN
		    CREATE INDEX idx_movimientos_sesion_created
		        ON movimientos_caja (sesion_caja_id, created_at);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
