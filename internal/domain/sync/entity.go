package sync

// Entity types tracked in external_refs
const (
	EntityClass   = "class"
	EntitySubject = "subject"
	EntityStudent = "student"
)

// Result summarizes one roster sync run
type Result struct {
	ClassesSynced   int `json:"classes_synced"`
	SubjectsSynced  int `json:"subjects_synced"`
	StudentsCreated int `json:"students_created"`
	StudentsUpdated int `json:"students_updated"`
}
