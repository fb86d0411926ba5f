package postgres

import "gorm.io/gorm"

// Migrations returns the ordered schema migrations for the lifecycle core.
//
// Accounts key on user_id, the identity provider's subject. Activity log rows
// reference that key with ON DELETE CASCADE so deleting an account removes
// its audit trail in the same statement.
func Migrations() []Migration {
	return []Migration{
		{
			Key: "2026-01-12-create-accounts",
			Executor: func(tx *gorm.DB) error {
				return tx.Exec(`
					CREATE TABLE accounts (
						id SERIAL PRIMARY KEY,
						created_at timestamptz NOT NULL DEFAULT now(),
						updated_at timestamptz NOT NULL DEFAULT now(),
						user_id text NOT NULL,
						role text NOT NULL,
						approval text NOT NULL DEFAULT 'pending',
						status text NOT NULL DEFAULT '',
						status_reason text NOT NULL DEFAULT '',
						employee_id text NOT NULL DEFAULT '',
						joining_date timestamptz,
						hold_days integer NOT NULL DEFAULT 0,
						hold_starts_at timestamptz,
						hold_ends_at timestamptz,
						CONSTRAINT accounts_user_id UNIQUE (user_id)
					);
					CREATE INDEX accounts_created_at_idx ON accounts (created_at DESC);
				`).Error
			},
		},
		{
			Key: "2026-01-12-create-activity-logs",
			Executor: func(tx *gorm.DB) error {
				return tx.Exec(`
					CREATE TABLE activity_logs (
						id SERIAL PRIMARY KEY,
						created_at timestamptz NOT NULL DEFAULT now(),
						updated_at timestamptz NOT NULL DEFAULT now(),
						account_user_id text NOT NULL REFERENCES accounts (user_id) ON DELETE CASCADE,
						actor_id text NOT NULL,
						prev_approval text NOT NULL DEFAULT '',
						new_approval text NOT NULL DEFAULT '',
						prev_status text NOT NULL DEFAULT '',
						new_status text NOT NULL DEFAULT '',
						prev_role text NOT NULL DEFAULT '',
						new_role text NOT NULL DEFAULT '',
						reason text NOT NULL DEFAULT '',
						hold_days integer NOT NULL DEFAULT 0,
						hold_ends_at timestamptz
					);
					CREATE INDEX activity_logs_account_idx ON activity_logs (account_user_id, created_at DESC);
				`).Error
			},
		},
	}
}
