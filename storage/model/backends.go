package model

// Backends groups all storage interfaces used by the application.
// It provides a single struct that can be passed around instead of
// multiple return values for each storage backend.
type Backends struct {
	Cases        CasesStore
	StatusTypes  StatusTypesStore
	StatusEvents StatusEventsStore
	Documents    DocumentsStore
	Comments     DocumentCommentsStore
	Users        UsersStore
	KV           KeyValueStore
}
