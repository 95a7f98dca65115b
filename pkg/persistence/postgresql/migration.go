package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Automation rules
			CREATE TABLE rules (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				type VARCHAR(50) NOT NULL,
				trigger VARCHAR(50) NOT NULL CHECK (trigger IN ('SCHEDULED', 'EVENT_BASED', 'CONDITION_BASED', 'MANUAL')),
				conditions JSONB,
				actions JSONB NOT NULL,
				priority INT NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT true,
				last_run_at TIMESTAMP WITH TIME ZONE,
				next_run_at TIMESTAMP WITH TIME ZONE,
				run_count BIGINT NOT NULL DEFAULT 0,
				success_count BIGINT NOT NULL DEFAULT 0,
				failure_count BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			-- Serves the scheduler's due-rule poll
			CREATE INDEX idx_rules_due ON rules(trigger, is_active, next_run_at) WHERE deleted_at IS NULL;
			CREATE INDEX idx_rules_trigger ON rules(trigger);
			CREATE INDEX idx_rules_deleted_at ON rules(deleted_at);
		`,
		2: `
			-- One row per rule run, retained past rule deletion
			CREATE TABLE execution_logs (
				id UUID PRIMARY KEY,
				rule_id UUID NOT NULL,
				triggered_by VARCHAR(20) NOT NULL CHECK (triggered_by IN ('SCHEDULE', 'EVENT', 'MANUAL')),
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				finished_at TIMESTAMP WITH TIME ZONE NOT NULL,
				status VARCHAR(20) NOT NULL CHECK (status IN ('SUCCESS', 'FAILURE', 'PARTIAL', 'SKIPPED')),
				action_results JSONB,
				duration_ms BIGINT NOT NULL DEFAULT 0,
				skip_reason TEXT
			);

			CREATE INDEX idx_execution_logs_rule_id ON execution_logs(rule_id, started_at DESC);
			CREATE INDEX idx_execution_logs_started_at ON execution_logs(started_at DESC);
			CREATE INDEX idx_execution_logs_status ON execution_logs(status);
		`,
		3: `
			-- Entities produced by actions
			CREATE TABLE invoices (
				id UUID PRIMARY KEY,
				client_id VARCHAR(255) NOT NULL,
				freelancer_id VARCHAR(255) NOT NULL,
				job_id VARCHAR(255),
				title VARCHAR(255) NOT NULL,
				items JSONB NOT NULL,
				tax_rate NUMERIC(6, 3) NOT NULL DEFAULT 0,
				total NUMERIC(14, 2) NOT NULL DEFAULT 0,
				due_date TIMESTAMP WITH TIME ZONE,
				status VARCHAR(50) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE reminders (
				id UUID PRIMARY KEY,
				user_id VARCHAR(255) NOT NULL,
				title VARCHAR(255) NOT NULL,
				description TEXT,
				due_date TIMESTAMP WITH TIME ZONE,
				priority VARCHAR(20),
				status VARCHAR(50) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE contracts (
				id UUID PRIMARY KEY,
				client_id VARCHAR(255) NOT NULL,
				freelancer_id VARCHAR(255) NOT NULL,
				job_id VARCHAR(255),
				template_id VARCHAR(255),
				terms JSONB,
				status VARCHAR(50) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE entity_statuses (
				entity_type VARCHAR(50) NOT NULL,
				entity_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (entity_type, entity_id)
			);
		`,
	}
}
