package domain

// Package is a purchasable employee-capacity tier. Price is in whole
// currency units; zero means free.
type Package struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	EmployeeLimit int      `json:"employeeLimit"`
	Price         int64    `json:"price"`
	Features      []string `json:"features,omitempty"`
}

// DefaultPackages seeds an empty catalogue.
var DefaultPackages = []Package{
	{Name: "basic", EmployeeLimit: 5, Price: 0, Features: []string{"Asset tracking", "Employee management", "Basic support"}},
	{Name: "standard", EmployeeLimit: 10, Price: 8, Features: []string{"All Basic features", "Advanced analytics", "Priority support"}},
	{Name: "premium", EmployeeLimit: 20, Price: 15, Features: []string{"All Standard features", "Custom branding", "24/7 support"}},
}
