package domain

import "time"

const AffiliationActive = "active"

// Affiliation links one employee to one HR company. At most one exists per
// (employee, company key) pair.
type Affiliation struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	EmployeeEmail string    `json:"employeeEmail"`
	CompanyName   string    `json:"companyName"`
	HREmail       string    `json:"hrEmail,omitempty"`
	Status        string    `json:"status"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// EmployeeView is an active affiliation joined with the employee's profile.
type EmployeeView struct {
	AffiliationID string    `json:"affiliationId"`
	EmployeeID    string    `json:"employeeId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PhotoURL      string    `json:"photoURL"`
	Status        string    `json:"status"`
	JoinedAt      time.Time `json:"joinedAt"`
}
