package employee

type EmployeeResponse struct {
	ID               string  `json:"id"`
	CompanyID        string  `json:"company_id"`
	LocationID       *string `json:"location_id,omitempty"`
	EmployeeCode     string  `json:"employee_code"`
	FullName         string  `json:"full_name"`
	EmploymentStatus string  `json:"employment_status"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:               e.ID,
		CompanyID:        e.CompanyID,
		LocationID:       e.LocationID,
		EmployeeCode:     e.EmployeeCode,
		FullName:         e.FullName,
		EmploymentStatus: string(e.EmploymentStatus),
	}
}
