package schema

// Migrations are applied in order at startup.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "Create user_profiles table",
		Up: `
			CREATE TABLE IF NOT EXISTS user_profiles (
				user_id UUID PRIMARY KEY,
				target_titles TEXT[] NOT NULL DEFAULT '{}',
				target_locations TEXT[] NOT NULL DEFAULT '{}',
				industries TEXT[] NOT NULL DEFAULT '{}',
				skills TEXT[] NOT NULL DEFAULT '{}',
				excluded_companies TEXT[] NOT NULL DEFAULT '{}',
				keyword_blacklist TEXT[] NOT NULL DEFAULT '{}',
				location_preference TEXT NOT NULL DEFAULT 'remote',
				experience_level TEXT NOT NULL DEFAULT 'mid',
				min_salary INT,
				max_applications_per_run INT NOT NULL DEFAULT 15,
				notes TEXT NOT NULL DEFAULT '',
				resume_text TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`,
		Down: `DROP TABLE IF EXISTS user_profiles`,
	},
	{
		Version:     2,
		Description: "Create job_listings table",
		Up: `
			CREATE TABLE IF NOT EXISTS job_listings (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL,
				company TEXT NOT NULL,
				title TEXT NOT NULL,
				url TEXT,
				description TEXT,
				location TEXT,
				salary_info TEXT,
				company_summary TEXT,
				score INT NOT NULL DEFAULT 0,
				status TEXT NOT NULL DEFAULT 'pending',
				source TEXT NOT NULL DEFAULT '',
				duplicate_hash TEXT NOT NULL,
				tailored_resume_text TEXT,
				cover_letter_text TEXT,
				apply_log JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_job_listings_user_status
				ON job_listings (user_id, status);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_job_listings_user_hash
				ON job_listings (user_id, duplicate_hash)
		`,
		Down: `DROP TABLE IF EXISTS job_listings`,
	},
	{
		Version:     3,
		Description: "Create scan_runs table",
		Up: `
			CREATE TABLE IF NOT EXISTS scan_runs (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL,
				status TEXT NOT NULL DEFAULT 'running',
				queries_run INT NOT NULL DEFAULT 0,
				raw_results INT NOT NULL DEFAULT 0,
				jobs_extracted INT NOT NULL DEFAULT 0,
				jobs_filtered INT NOT NULL DEFAULT 0,
				jobs_scored INT NOT NULL DEFAULT 0,
				jobs_saved INT NOT NULL DEFAULT 0,
				error TEXT NOT NULL DEFAULT '',
				started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				finished_at TIMESTAMPTZ
			);
			CREATE INDEX IF NOT EXISTS idx_scan_runs_user
				ON scan_runs (user_id, started_at DESC)
		`,
		Down: `DROP TABLE IF EXISTS scan_runs`,
	},
}
