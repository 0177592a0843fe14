package logging

// Field names shared by every package so log output can be filtered consistently.
const (
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldCount         = "count"
	FieldSupervisor    = "supervisor"
	FieldSessionDate   = "session_date"
	FieldModality      = "modality"
	FieldAmount        = "amount"
	FieldItemKey       = "item_key"
	FieldTransactionID = "transaction_id"
	FieldBackupPath    = "backup_path"
	FieldReportPath    = "report_path"
	FieldCatalogFile   = "catalog_file"
	FieldDirectory     = "directory"
)
