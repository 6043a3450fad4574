package order

// Compliant is the compliance gate: true iff every checklist line is APPROVED
// and the checklist is non-empty. An order with zero lines is a configuration
// error, never vacuously compliant.
func Compliant(lines []ChecklistLine) bool {
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if line.Status != LineApproved {
			return false
		}
	}
	return true
}

// Progress counts approved lines against the checklist total, for
// caller-facing rejection reasons ("2 of 5 requirements approved").
func Progress(lines []ChecklistLine) (approved, total int) {
	for _, line := range lines {
		if line.Status == LineApproved {
			approved++
		}
	}
	return approved, len(lines)
}
