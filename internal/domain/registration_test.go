package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    Status
		wantErr bool
	}{
		{"draft", StatusDraft, false},
		{"submitted", StatusSubmitted, false},
		{"pending", StatusSubmitted, false}, // legacy alias
		{"approved", StatusApproved, false},
		{"rejected", StatusRejected, false},
		{"cancelled", StatusCancelled, false},
		{"", "", true},
		{"PENDING", "", true},
		{"in_review", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizeStatus(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusEditable(t *testing.T) {
	assert.True(t, StatusDraft.Editable())
	assert.True(t, StatusRejected.Editable())
	assert.False(t, StatusSubmitted.Editable())
	assert.False(t, StatusApproved.Editable())
	assert.False(t, StatusCancelled.Editable())
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusDraft, StatusSubmitted},
		{StatusRejected, StatusSubmitted},
		{StatusSubmitted, StatusApproved},
		{StatusSubmitted, StatusRejected},
		{StatusDraft, StatusCancelled},
		{StatusSubmitted, StatusCancelled},
		{StatusRejected, StatusCancelled},
	}
	for _, e := range allowed {
		assert.True(t, CanTransition(e.from, e.to), "%s -> %s", e.from, e.to)
	}

	denied := []struct{ from, to Status }{
		{StatusApproved, StatusRejected}, // reversal is a config decision, not an edge
		{StatusApproved, StatusSubmitted},
		{StatusDraft, StatusApproved},
		{StatusDraft, StatusRejected},
		{StatusRejected, StatusApproved},
		{StatusCancelled, StatusSubmitted},
		{StatusApproved, StatusCancelled},
		{StatusCancelled, StatusCancelled},
		{StatusSubmitted, StatusDraft},
	}
	for _, e := range denied {
		assert.False(t, CanTransition(e.from, e.to), "%s -> %s", e.from, e.to)
	}
}

func TestReviewDecisionValidate(t *testing.T) {
	reviewer := uuid.New()

	t.Run("approve is valid without a reason", func(t *testing.T) {
		d := ReviewDecision{Status: StatusApproved, ReviewerID: reviewer}
		require.NoError(t, d.Validate())
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		d := ReviewDecision{Status: StatusRejected, ReviewerID: reviewer}
		require.Error(t, d.Validate())

		d.RejectionReason = "roster incomplete"
		require.NoError(t, d.Validate())
	})

	t.Run("only the two verdicts are accepted", func(t *testing.T) {
		for _, s := range []Status{StatusDraft, StatusSubmitted, StatusCancelled} {
			d := ReviewDecision{Status: s, ReviewerID: reviewer}
			require.Error(t, d.Validate(), string(s))
		}
	})
}

func TestPlayerRecordID(t *testing.T) {
	assert.Equal(t, "p1", PlayerRecord{"id": "p1"}.ID())
	assert.Equal(t, "", PlayerRecord{}.ID())
	assert.Equal(t, "", PlayerRecord{"id": 42}.ID())
}
