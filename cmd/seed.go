package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/TharinduNimesh/apiforge/internal/config"
	"github.com/TharinduNimesh/apiforge/internal/db"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo records...")

		if err := seedAll(sqlDB); err != nil {
			return err
		}

		log.Println(">> Seed completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type seedRow struct {
	query string
	args  []any
}

// seedAll inserts deterministic demo records (idempotent upserts).
func seedAll(dbx *sqlx.DB) error {
	now := time.Now()
	expires := now.AddDate(1, 0, 0)

	rows := []seedRow{
		// users
		{`INSERT INTO users (id, email, name, role, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE role = VALUES(role), updated_at = VALUES(updated_at)`,
			[]any{"usr_admin", "admin@apiforge.local", "Admin", "admin", now, now}},
		{`INSERT INTO users (id, email, name, role, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE role = VALUES(role), updated_at = VALUES(updated_at)`,
			[]any{"usr_alice", "alice@apiforge.local", "Alice", "user", now, now}},
		{`INSERT INTO users (id, email, name, role, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE role = VALUES(role), updated_at = VALUES(updated_at)`,
			[]any{"usr_bob", "bob@apiforge.local", "Bob", "user", now, now}},

		// departments (one inactive on purpose)
		{`INSERT INTO departments (id, name, is_active, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE is_active = VALUES(is_active), updated_at = VALUES(updated_at)`,
			[]any{"dep_eng", "Engineering", true, now, now}},
		{`INSERT INTO departments (id, name, is_active, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE is_active = VALUES(is_active), updated_at = VALUES(updated_at)`,
			[]any{"dep_sales", "Sales", true, now, now}},
		{`INSERT INTO departments (id, name, is_active, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE is_active = VALUES(is_active), updated_at = VALUES(updated_at)`,
			[]any{"dep_legacy", "Legacy", false, now, now}},

		// memberships (alice in two departments: overlapping grants below)
		{`INSERT IGNORE INTO department_users (department_id, user_id) VALUES (?, ?)`,
			[]any{"dep_eng", "usr_alice"}},
		{`INSERT IGNORE INTO department_users (department_id, user_id) VALUES (?, ?)`,
			[]any{"dep_sales", "usr_alice"}},
		{`INSERT IGNORE INTO department_users (department_id, user_id) VALUES (?, ?)`,
			[]any{"dep_legacy", "usr_bob"}},

		// apis
		{`INSERT INTO apis (id, name, base_url, is_active, type, created_by, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE base_url = VALUES(base_url), is_active = VALUES(is_active), updated_at = VALUES(updated_at)`,
			[]any{"api_weather", "Weather", "https://api.weather.example.com/", true, "FREE", "usr_admin", now, now}},
		{`INSERT INTO apis (id, name, base_url, is_active, type, created_by, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE base_url = VALUES(base_url), is_active = VALUES(is_active), updated_at = VALUES(updated_at)`,
			[]any{"api_billing", "Billing", "https://billing.example.com", false, "PAID", "usr_admin", now, now}},

		// endpoints
		{`INSERT INTO endpoints (id, api_id, path, method, description, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE path = VALUES(path), method = VALUES(method), updated_at = VALUES(updated_at)`,
			[]any{"ep_forecast", "api_weather", "/v1/cities/{cityId}/forecast", "GET", "City forecast", now, now}},
		{`INSERT INTO endpoints (id, api_id, path, method, description, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE path = VALUES(path), method = VALUES(method), updated_at = VALUES(updated_at)`,
			[]any{"ep_upload", "api_weather", "/v1/stations/import", "POST", "Bulk station import", now, now}},

		// parameters for a representative spread of locations
		{`INSERT INTO parameters (id, endpoint_id, name, param_in, type, required)
		  VALUES (?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE param_in = VALUES(param_in), required = VALUES(required)`,
			[]any{"par_city", "ep_forecast", "cityId", "path", "string", true}},
		{`INSERT INTO parameters (id, endpoint_id, name, param_in, type, required)
		  VALUES (?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE param_in = VALUES(param_in), required = VALUES(required)`,
			[]any{"par_days", "ep_forecast", "days", "query", "number", false}},
		{`INSERT INTO parameters (id, endpoint_id, name, param_in, type, required)
		  VALUES (?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE param_in = VALUES(param_in), required = VALUES(required)`,
			[]any{"par_lang", "ep_forecast", "Accept-Language", "header", "string", false}},
		{`INSERT INTO parameters (id, endpoint_id, name, param_in, type, required)
		  VALUES (?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE param_in = VALUES(param_in), required = VALUES(required)`,
			[]any{"par_file", "ep_upload", "stations", "formData", "file", true}},
		{`INSERT INTO parameters (id, endpoint_id, name, param_in, type, required)
		  VALUES (?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE param_in = VALUES(param_in), required = VALUES(required)`,
			[]any{"par_region", "ep_upload", "region", "formData", "string", false}},

		// overlapping grants: alice's effective limit for api_weather is 100
		{`INSERT INTO department_apis (department_id, api_id, rate_limit)
		  VALUES (?, ?, ?)
		  ON DUPLICATE KEY UPDATE rate_limit = VALUES(rate_limit)`,
			[]any{"dep_eng", "api_weather", 100}},
		{`INSERT INTO department_apis (department_id, api_id, rate_limit)
		  VALUES (?, ?, ?)
		  ON DUPLICATE KEY UPDATE rate_limit = VALUES(rate_limit)`,
			[]any{"dep_sales", "api_weather", 50}},

		// demo api key for alice
		{`INSERT INTO api_keys (id, name, ` + "`key`" + `, user_id, expires_at, last_used_at, created_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE expires_at = VALUES(expires_at)`,
			[]any{"key_demo", "demo", "apf_demo1111111111111111111111111111", "usr_alice", expires, now, now}},
	}

	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, r := range rows {
		if _, err := tx.Exec(r.query, r.args...); err != nil {
			return fmt.Errorf("seed insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
