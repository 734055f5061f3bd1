package models

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
)

// StudentIdentity is the verified identity the session layer hands us with
// every student-facing request.
type StudentIdentity struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
