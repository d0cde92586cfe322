package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdmissionStatus(t *testing.T) {
	for _, raw := range []string{
		"submitted", "pending", "under_review", "interview_scheduled",
		"assessment_scheduled", "offer_made", "offer_accepted",
		"offer_declined", "rejected", "withdrawn", "converted_to_student",
	} {
		s, err := ParseAdmissionStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, AdmissionStatus(raw), s)
	}

	for _, raw := range []string{"", "SUBMITTED", "approved", "offer-made", "converted"} {
		_, err := ParseAdmissionStatus(raw)
		assert.Error(t, err, raw)
	}
}

func TestAdmissionStatusTransitions(t *testing.T) {
	allowed := map[AdmissionStatus][]AdmissionStatus{
		AdmissionSubmitted:           {AdmissionPending, AdmissionUnderReview, AdmissionWithdrawn},
		AdmissionPending:             {AdmissionUnderReview, AdmissionWithdrawn},
		AdmissionUnderReview:         {AdmissionInterviewScheduled, AdmissionAssessmentScheduled, AdmissionOfferMade, AdmissionRejected, AdmissionWithdrawn},
		AdmissionInterviewScheduled:  {AdmissionAssessmentScheduled, AdmissionOfferMade, AdmissionRejected, AdmissionWithdrawn},
		AdmissionAssessmentScheduled: {AdmissionOfferMade, AdmissionRejected, AdmissionWithdrawn},
		AdmissionOfferMade:           {AdmissionOfferAccepted, AdmissionOfferDeclined, AdmissionWithdrawn},
		AdmissionOfferAccepted:       {AdmissionWithdrawn},
	}

	all := []AdmissionStatus{
		AdmissionSubmitted, AdmissionPending, AdmissionUnderReview,
		AdmissionInterviewScheduled, AdmissionAssessmentScheduled,
		AdmissionOfferMade, AdmissionOfferAccepted, AdmissionOfferDeclined,
		AdmissionRejected, AdmissionWithdrawn, AdmissionConverted,
	}

	// Every (from, to) pair must agree with the edge table; everything not
	// listed is forbidden.
	for _, from := range all {
		edges := allowed[from]
		for _, to := range all {
			want := false
			for _, e := range edges {
				if e == to {
					want = true
					break
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestAdmissionStatusConvertedNotReachableByTransition(t *testing.T) {
	all := []AdmissionStatus{
		AdmissionSubmitted, AdmissionPending, AdmissionUnderReview,
		AdmissionInterviewScheduled, AdmissionAssessmentScheduled,
		AdmissionOfferMade, AdmissionOfferAccepted, AdmissionOfferDeclined,
		AdmissionRejected, AdmissionWithdrawn, AdmissionConverted,
	}
	for _, from := range all {
		assert.False(t, from.CanTransitionTo(AdmissionConverted), "%s must not reach converted_to_student by plain transition", from)
	}
}

func TestAdmissionStatusIsTerminal(t *testing.T) {
	terminal := []AdmissionStatus{AdmissionRejected, AdmissionWithdrawn, AdmissionOfferDeclined, AdmissionConverted}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), s)
	}
	open := []AdmissionStatus{
		AdmissionSubmitted, AdmissionPending, AdmissionUnderReview,
		AdmissionInterviewScheduled, AdmissionAssessmentScheduled,
		AdmissionOfferMade, AdmissionOfferAccepted,
	}
	for _, s := range open {
		assert.False(t, s.IsTerminal(), s)
	}
}

func TestAdmissionStatusIsDecision(t *testing.T) {
	assert.True(t, AdmissionOfferMade.IsDecision())
	assert.True(t, AdmissionRejected.IsDecision())
	assert.True(t, AdmissionOfferDeclined.IsDecision())
	assert.False(t, AdmissionOfferAccepted.IsDecision())
	assert.False(t, AdmissionUnderReview.IsDecision())
	assert.False(t, AdmissionConverted.IsDecision())
}

func TestAdmissionHasAssessmentOutcome(t *testing.T) {
	adm := &Admission{}
	assert.False(t, adm.HasAssessmentOutcome())

	score := 82.5
	adm.AssessmentScore = &score
	assert.True(t, adm.HasAssessmentOutcome())

	adm.AssessmentScore = nil
	adm.AssessmentNotes = "strong interview, weak math"
	assert.True(t, adm.HasAssessmentOutcome())
}

func TestAdmissionPrimaryGuardian(t *testing.T) {
	adm := &Admission{Guardians: []AdmissionGuardian{
		{FullName: "Ayşe Yılmaz", Email: "ayse@example.com"},
		{FullName: "Mehmet Yılmaz", Email: "mehmet@example.com", IsPrimary: true},
	}}
	g := adm.PrimaryGuardian()
	require.NotNil(t, g)
	assert.Equal(t, "Mehmet Yılmaz", g.FullName)

	assert.Nil(t, (&Admission{}).PrimaryGuardian())
}
