package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pharmaops/pkg/domain"
)

func TestCompliant(t *testing.T) {
	approved := func() ChecklistLine {
		return ChecklistLine{ID: domain.NewLineID(), Status: LineApproved}
	}

	t.Run("empty checklist is never compliant", func(t *testing.T) {
		assert.False(t, Compliant(nil))
		assert.False(t, Compliant([]ChecklistLine{}))
	})

	t.Run("all approved passes", func(t *testing.T) {
		assert.True(t, Compliant([]ChecklistLine{approved(), approved(), approved()}))
	})

	t.Run("single non-approved line fails", func(t *testing.T) {
		for _, status := range []LineStatus{LineMissing, LinePending, LineRejected} {
			lines := []ChecklistLine{approved(), {ID: domain.NewLineID(), Status: status}}
			assert.False(t, Compliant(lines), "status %s", status)
		}
	})
}

func TestProgress(t *testing.T) {
	lines := []ChecklistLine{
		{Status: LineApproved},
		{Status: LineApproved},
		{Status: LinePending},
		{Status: LineMissing},
		{Status: LineRejected},
	}
	approved, total := Progress(lines)
	assert.Equal(t, 2, approved)
	assert.Equal(t, 5, total)

	approved, total = Progress(nil)
	assert.Equal(t, 0, approved)
	assert.Equal(t, 0, total)
}
