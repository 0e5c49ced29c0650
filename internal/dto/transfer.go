package dto

// ImportCaseResponse result of a spreadsheet import.
type ImportCaseResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	IDs     []string          `json:"ids,omitempty"`
	Errors  []ImportCaseError `json:"errors,omitempty"`
}

// ImportCaseError why one row was rejected.
type ImportCaseError struct {
	Row    int               `json:"row"`
	Reason string            `json:"reason"`
	Fields map[string]string `json:"fields,omitempty"`
}
