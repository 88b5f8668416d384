package migrations

import _ "embed"

//go:embed 0002_create_session_results.sql
var createSessionResultsSQL string

func init() {
	Migrations.MustRegister(
		execSQL(createSessionResultsSQL),
		execSQL(`DROP TABLE IF EXISTS session_results`),
	)
}
