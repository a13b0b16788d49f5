package storage

// The ledger's integrity guarantee depends on physical immutability of the
// audit and decision tables, not just application-level discipline. These
// PostgreSQL triggers make the database itself reject any UPDATE or DELETE.

const appendOnlyFn = `
CREATE OR REPLACE FUNCTION reject_mutation() RETURNS trigger AS $$
BEGIN
    RAISE EXCEPTION '% is append-only', TG_TABLE_NAME;
END;
$$ LANGUAGE plpgsql;
`

var appendOnlyTriggers = []string{
	`DROP TRIGGER IF EXISTS audit_log_no_update ON audit_log;
	 CREATE TRIGGER audit_log_no_update BEFORE UPDATE ON audit_log
	 FOR EACH ROW EXECUTE FUNCTION reject_mutation();`,
	`DROP TRIGGER IF EXISTS audit_log_no_delete ON audit_log;
	 CREATE TRIGGER audit_log_no_delete BEFORE DELETE ON audit_log
	 FOR EACH ROW EXECUTE FUNCTION reject_mutation();`,
	`DROP TRIGGER IF EXISTS decisions_no_update ON decisions;
	 CREATE TRIGGER decisions_no_update BEFORE UPDATE ON decisions
	 FOR EACH ROW EXECUTE FUNCTION reject_mutation();`,
	`DROP TRIGGER IF EXISTS decisions_no_delete ON decisions;
	 CREATE TRIGGER decisions_no_delete BEFORE DELETE ON decisions
	 FOR EACH ROW EXECUTE FUNCTION reject_mutation();`,
}

// InitAppendOnlyGuards installs the triggers. Call after AutoMigrate.
func (s *Service) InitAppendOnlyGuards() error {
	if err := s.DB.Exec(appendOnlyFn).Error; err != nil {
		return err
	}
	for _, stmt := range appendOnlyTriggers {
		if err := s.DB.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
