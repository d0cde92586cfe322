package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/pkg/apperrors"
)

// fakeAdmissionStore mirrors the Postgres repository's semantics in memory:
// conditional status writes fail with a conflict when the expected pre-state
// is gone, and reads hand out copies so callers cannot mutate stored state.
type fakeAdmissionStore struct {
	byID map[string]*models.Admission
}

func newFakeAdmissionStore() *fakeAdmissionStore {
	return &fakeAdmissionStore{byID: map[string]*models.Admission{}}
}

func (f *fakeAdmissionStore) Create(_ context.Context, adm *models.Admission) error {
	cp := *adm
	f.byID[adm.ID] = &cp
	return nil
}

func (f *fakeAdmissionStore) GetByID(_ context.Context, schoolID, id string) (*models.Admission, error) {
	stored, ok := f.byID[id]
	if !ok || stored.SchoolID != schoolID {
		return nil, apperrors.ErrAdmissionNotFound
	}
	cp := *stored
	return &cp, nil
}

func (f *fakeAdmissionStore) List(_ context.Context, schoolID string, status *models.AdmissionStatus, _, _ int) ([]models.Admission, int, error) {
	var out []models.Admission
	for _, a := range f.byID {
		if a.SchoolID != schoolID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (f *fakeAdmissionStore) Update(_ context.Context, adm *models.Admission) error {
	if _, ok := f.byID[adm.ID]; !ok {
		return apperrors.ErrAdmissionNotFound
	}
	cp := *adm
	f.byID[adm.ID] = &cp
	return nil
}

func (f *fakeAdmissionStore) UpdateStatus(_ context.Context, adm *models.Admission, expected models.AdmissionStatus) error {
	stored, ok := f.byID[adm.ID]
	if !ok {
		return apperrors.ErrAdmissionNotFound
	}
	if stored.Status != expected {
		return apperrors.NewConflictError(fmt.Sprintf("admission %s was modified concurrently", adm.ID))
	}
	stored.Status = adm.Status
	stored.DecisionNotes = adm.DecisionNotes
	stored.DecisionBy = adm.DecisionBy
	stored.DecisionDate = adm.DecisionDate
	stored.UpdatedAt = adm.UpdatedAt
	return nil
}

func (f *fakeAdmissionStore) MarkConverted(_ context.Context, schoolID, id, studentID string) error {
	stored, ok := f.byID[id]
	if !ok || stored.SchoolID != schoolID {
		return apperrors.ErrAdmissionNotFound
	}
	if stored.Status != models.AdmissionOfferAccepted {
		return apperrors.NewConflictError(fmt.Sprintf("admission %s is no longer awaiting conversion", id))
	}
	stored.Status = models.AdmissionConverted
	stored.StudentID = studentID
	return nil
}

func (f *fakeAdmissionStore) Delete(_ context.Context, schoolID, id string) error {
	stored, ok := f.byID[id]
	if !ok || stored.SchoolID != schoolID {
		return apperrors.ErrAdmissionNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeStudentStore struct {
	byAdmission map[string]*models.Student
	onCreate    func() // runs before the write; lets tests interleave racers
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{byAdmission: map[string]*models.Student{}}
}

func (f *fakeStudentStore) CreateFromAdmission(_ context.Context, s *models.Student) (*models.Student, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	if existing, ok := f.byAdmission[s.AdmissionID]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *s
	f.byAdmission[s.AdmissionID] = &cp
	return s, nil
}

type fakeGuardianStore struct {
	byEmail map[string]*models.Guardian
}

func newFakeGuardianStore() *fakeGuardianStore {
	return &fakeGuardianStore{byEmail: map[string]*models.Guardian{}}
}

func guardianKey(schoolID, email string) string {
	return schoolID + "|" + strings.ToLower(email)
}

func (f *fakeGuardianStore) Create(_ context.Context, g *models.Guardian) error {
	key := guardianKey(g.SchoolID, g.Email)
	if _, ok := f.byEmail[key]; ok {
		return apperrors.ErrResourceAlreadyExists
	}
	cp := *g
	f.byEmail[key] = &cp
	return nil
}

func (f *fakeGuardianStore) GetByEmail(_ context.Context, schoolID, email string) (*models.Guardian, error) {
	g, ok := f.byEmail[guardianKey(schoolID, email)]
	if !ok {
		return nil, apperrors.ErrGuardianNotFound
	}
	cp := *g
	return &cp, nil
}

const testSchoolID = "c2f9f6f0-0000-4000-8000-000000000001"

func newTestAdmissionService(t *testing.T) (*admissionServiceImpl, *fakeAdmissionStore, *fakeStudentStore, *fakeGuardianStore) {
	t.Helper()
	admissions := newFakeAdmissionStore()
	students := newFakeStudentStore()
	guardians := newFakeGuardianStore()
	svc := NewAdmissionService(admissions, students, guardians, zerolog.Nop()).(*admissionServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc, admissions, students, guardians
}

func validApplicant() models.Applicant {
	return models.Applicant{
		FirstName:          "Elif",
		LastName:           "Demir",
		DateOfBirth:        time.Date(2018, 6, 2, 0, 0, 0, 0, time.UTC),
		Gender:             "female",
		Nationality:        "TR",
		AppliedGrade:       "3",
		PreferredStartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func validGuardians() []models.AdmissionGuardian {
	return []models.AdmissionGuardian{
		{FullName: "Zeynep Demir", Relationship: "mother", Email: "zeynep@example.com", Phone: "+905551112233", IsPrimary: true},
		{FullName: "Ali Demir", Relationship: "father", Email: "ali@example.com"},
	}
}

func TestSubmitCreatesSubmittedAdmission(t *testing.T) {
	svc, store, _, _ := newTestAdmissionService(t)

	adm, err := svc.Submit(context.Background(), testSchoolID, validApplicant(), validGuardians(), "Old Town Primary")
	require.NoError(t, err)

	assert.Equal(t, models.AdmissionSubmitted, adm.Status)
	assert.NotEmpty(t, adm.ID)
	assert.True(t, strings.HasPrefix(adm.ApplicationNumber, "ADM-2026-"), adm.ApplicationNumber)
	assert.Equal(t, "Old Town Primary", adm.PreviousSchool)
	assert.Len(t, adm.Guardians, 2)
	assert.Empty(t, adm.Documents)

	stored, err := store.GetByID(context.Background(), testSchoolID, adm.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionSubmitted, stored.Status)
}

func TestSubmitValidation(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)
	ctx := context.Background()

	cases := []struct {
		name      string
		applicant models.Applicant
		guardians []models.AdmissionGuardian
	}{
		{
			name: "missing first name",
			applicant: func() models.Applicant {
				a := validApplicant()
				a.FirstName = ""
				return a
			}(),
			guardians: validGuardians(),
		},
		{
			name: "missing date of birth",
			applicant: func() models.Applicant {
				a := validApplicant()
				a.DateOfBirth = time.Time{}
				return a
			}(),
			guardians: validGuardians(),
		},
		{
			name:      "no guardians",
			applicant: validApplicant(),
			guardians: nil,
		},
		{
			name:      "no primary guardian",
			applicant: validApplicant(),
			guardians: []models.AdmissionGuardian{
				{FullName: "Zeynep Demir", Email: "zeynep@example.com"},
			},
		},
		{
			name:      "two primary guardians",
			applicant: validApplicant(),
			guardians: []models.AdmissionGuardian{
				{FullName: "Zeynep Demir", Email: "zeynep@example.com", IsPrimary: true},
				{FullName: "Ali Demir", Email: "ali@example.com", IsPrimary: true},
			},
		},
		{
			name:      "guardian without email",
			applicant: validApplicant(),
			guardians: []models.AdmissionGuardian{
				{FullName: "Zeynep Demir", IsPrimary: true},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, testSchoolID, tc.applicant, tc.guardians, "")
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func submitAt(t *testing.T, svc *admissionServiceImpl, status models.AdmissionStatus) *models.Admission {
	t.Helper()
	adm, err := svc.Submit(context.Background(), testSchoolID, validApplicant(), validGuardians(), "")
	require.NoError(t, err)

	// Walk a legal path to the requested status.
	paths := map[models.AdmissionStatus][]models.AdmissionStatus{
		models.AdmissionSubmitted:           {},
		models.AdmissionPending:             {models.AdmissionPending},
		models.AdmissionUnderReview:         {models.AdmissionUnderReview},
		models.AdmissionInterviewScheduled:  {models.AdmissionUnderReview, models.AdmissionInterviewScheduled},
		models.AdmissionAssessmentScheduled: {models.AdmissionUnderReview, models.AdmissionAssessmentScheduled},
		models.AdmissionOfferMade:           {models.AdmissionUnderReview, models.AdmissionOfferMade},
		models.AdmissionOfferAccepted:       {models.AdmissionUnderReview, models.AdmissionOfferMade, models.AdmissionOfferAccepted},
		models.AdmissionOfferDeclined:       {models.AdmissionUnderReview, models.AdmissionOfferMade, models.AdmissionOfferDeclined},
		models.AdmissionRejected:            {models.AdmissionUnderReview, models.AdmissionRejected},
		models.AdmissionWithdrawn:           {models.AdmissionWithdrawn},
	}
	steps, ok := paths[status]
	require.True(t, ok, "no path to %s", status)
	for _, step := range steps {
		var err error
		adm, err = svc.Transition(context.Background(), testSchoolID, adm.ID, step, "reviewer-1", "")
		require.NoError(t, err)
	}
	return adm
}

func TestTransitionAllowedEdge(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionSubmitted)
	out, err := svc.Transition(context.Background(), testSchoolID, adm.ID, models.AdmissionUnderReview, "reviewer-1", "")
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionUnderReview, out.Status)
}

func TestTransitionDisallowedEdgeLeavesRecordUnchanged(t *testing.T) {
	svc, store, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionSubmitted)
	_, err := svc.Transition(context.Background(), testSchoolID, adm.ID, models.AdmissionOfferMade, "reviewer-1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	var transitionErr *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "submitted", transitionErr.From)
	assert.Equal(t, "offer_made", transitionErr.To)

	stored, err := store.GetByID(context.Background(), testSchoolID, adm.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionSubmitted, stored.Status)
	assert.Empty(t, stored.DecisionBy)
	assert.Nil(t, stored.DecisionDate)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionSubmitted)
	_, err := svc.Transition(context.Background(), testSchoolID, adm.ID, models.AdmissionStatus("approved"), "reviewer-1", "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestTransitionToConvertedIsForbidden(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionOfferAccepted)
	_, err := svc.Transition(context.Background(), testSchoolID, adm.ID, models.AdmissionConverted, "reviewer-1", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestTransitionOutOfTerminalStatusFails(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	for _, terminal := range []models.AdmissionStatus{
		models.AdmissionRejected, models.AdmissionWithdrawn, models.AdmissionOfferDeclined,
	} {
		adm := submitAt(t, svc, terminal)
		_, err := svc.Transition(context.Background(), testSchoolID, adm.ID, models.AdmissionUnderReview, "reviewer-1", "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition, terminal)
	}
}

func TestTransitionRecordsDecisionFields(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionUnderReview)
	out, err := svc.Transition(context.Background(), testSchoolID, adm.ID, models.AdmissionRejected, "reviewer-7", "does not meet grade requirements")
	require.NoError(t, err)

	assert.Equal(t, models.AdmissionRejected, out.Status)
	assert.Equal(t, "reviewer-7", out.DecisionBy)
	assert.Equal(t, "does not meet grade requirements", out.DecisionNotes)
	require.NotNil(t, out.DecisionDate)
	assert.Equal(t, svc.now().UTC(), *out.DecisionDate)
}

func TestAssessmentGateBlocksDecisionWithoutOutcome(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionAssessmentScheduled)

	_, err := svc.Transition(context.Background(), testSchoolID, adm.ID, models.AdmissionOfferMade, "reviewer-1", "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Transition(context.Background(), testSchoolID, adm.ID, models.AdmissionRejected, "reviewer-1", "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	// Withdrawal is not a decision and stays open even without an outcome.
	_, err = svc.Transition(context.Background(), testSchoolID, adm.ID, models.AdmissionWithdrawn, "reviewer-1", "")
	assert.NoError(t, err)
}

func TestAssessmentGateOpensAfterRecordAssessment(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionAssessmentScheduled)

	score := 88.0
	_, err := svc.RecordAssessment(context.Background(), testSchoolID, adm.ID, &score, "confident reader")
	require.NoError(t, err)

	out, err := svc.Transition(context.Background(), testSchoolID, adm.ID, models.AdmissionOfferMade, "reviewer-1", "")
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionOfferMade, out.Status)
}

func TestRecordAssessmentOutsideAssessmentScheduled(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionUnderReview)
	score := 75.0
	_, err := svc.RecordAssessment(context.Background(), testSchoolID, adm.ID, &score, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	var stateErr *apperrors.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "under_review", stateErr.Status)
}

func TestRecordAssessmentRequiresScoreOrNotes(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionAssessmentScheduled)
	_, err := svc.RecordAssessment(context.Background(), testSchoolID, adm.ID, nil, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAddDocument(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionSubmitted)
	out, err := svc.AddDocument(context.Background(), testSchoolID, adm.ID, "birth_certificate", "birth.pdf", "admissions/abc/birth.pdf")
	require.NoError(t, err)
	require.Len(t, out.Documents, 1)
	assert.Equal(t, "birth_certificate", out.Documents[0].Type)
	assert.Equal(t, svc.now().UTC(), out.Documents[0].UploadedAt)

	// Resubmitting the same document type appends rather than replacing.
	out, err = svc.AddDocument(context.Background(), testSchoolID, adm.ID, "birth_certificate", "birth-v2.pdf", "admissions/abc/birth-v2.pdf")
	require.NoError(t, err)
	assert.Len(t, out.Documents, 2)
}

func TestAddDocumentOnTerminalAdmission(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionWithdrawn)
	_, err := svc.AddDocument(context.Background(), testSchoolID, adm.ID, "report_card", "report.pdf", "admissions/abc/report.pdf")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestConvertAcceptedAdmission(t *testing.T) {
	svc, store, students, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionOfferAccepted)

	student, guardians, err := svc.Convert(context.Background(), testSchoolID, adm.ID)
	require.NoError(t, err)

	assert.Equal(t, "Elif", student.FirstName)
	assert.Equal(t, "Demir", student.LastName)
	assert.Equal(t, "3", student.Grade)
	assert.Equal(t, models.StudentActive, student.Status)
	assert.Equal(t, adm.ID, student.AdmissionID)
	assert.Equal(t, validApplicant().PreferredStartDate, student.EnrollmentDate)

	require.Len(t, guardians, 2)
	assert.ElementsMatch(t, student.GuardianIDs, []string{guardians[0].ID, guardians[1].ID})

	stored, err := store.GetByID(context.Background(), testSchoolID, adm.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionConverted, stored.Status)
	assert.Equal(t, student.ID, stored.StudentID)

	assert.Len(t, students.byAdmission, 1)
}

func TestConvertUsesTodayWhenPreferredStartDatePassed(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)
	svc.now = func() time.Time { return time.Date(2027, 1, 5, 12, 0, 0, 0, time.UTC) }

	adm := submitAt(t, svc, models.AdmissionOfferAccepted)
	student, _, err := svc.Convert(context.Background(), testSchoolID, adm.ID)
	require.NoError(t, err)
	assert.Equal(t, svc.now().UTC(), student.EnrollmentDate)
}

func TestConvertRequiresOfferAccepted(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	for _, status := range []models.AdmissionStatus{
		models.AdmissionSubmitted, models.AdmissionUnderReview,
		models.AdmissionOfferMade, models.AdmissionRejected,
	} {
		adm := submitAt(t, svc, status)
		_, _, err := svc.Convert(context.Background(), testSchoolID, adm.ID)
		require.Error(t, err, status)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState, status)
	}
}

func TestConvertTwiceFailsWithoutSecondStudent(t *testing.T) {
	svc, _, students, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionOfferAccepted)

	first, _, err := svc.Convert(context.Background(), testSchoolID, adm.ID)
	require.NoError(t, err)

	_, _, err = svc.Convert(context.Background(), testSchoolID, adm.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	assert.Len(t, students.byAdmission, 1)
	assert.Equal(t, first.ID, students.byAdmission[adm.ID].ID)
}

func TestConvertLostRaceSurfacesConflict(t *testing.T) {
	svc, store, students, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionOfferAccepted)

	// Another worker flips the status between our read and the conditional
	// status write; the conversion must fail with a conflict, not overwrite.
	students.onCreate = func() {
		store.byID[adm.ID].Status = models.AdmissionWithdrawn
	}

	_, _, err := svc.Convert(context.Background(), testSchoolID, adm.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestConvertDeduplicatesGuardiansAcrossAdmissions(t *testing.T) {
	svc, _, _, guardianStore := newTestAdmissionService(t)
	ctx := context.Background()

	// Two siblings share the same guardians.
	first := submitAt(t, svc, models.AdmissionOfferAccepted)
	second := submitAt(t, svc, models.AdmissionOfferAccepted)

	_, firstGuardians, err := svc.Convert(ctx, testSchoolID, first.ID)
	require.NoError(t, err)
	_, secondGuardians, err := svc.Convert(ctx, testSchoolID, second.ID)
	require.NoError(t, err)

	require.Len(t, firstGuardians, 2)
	require.Len(t, secondGuardians, 2)
	assert.Equal(t, firstGuardians[0].ID, secondGuardians[0].ID)
	assert.Equal(t, firstGuardians[1].ID, secondGuardians[1].ID)
	assert.Len(t, guardianStore.byEmail, 2)
}

func TestConvertGuardianEmailMatchIsCaseInsensitive(t *testing.T) {
	svc, _, _, guardianStore := newTestAdmissionService(t)
	ctx := context.Background()

	adm1, err := svc.Submit(ctx, testSchoolID, validApplicant(), []models.AdmissionGuardian{
		{FullName: "Zeynep Demir", Email: "Zeynep@Example.com", IsPrimary: true},
	}, "")
	require.NoError(t, err)
	adm2, err := svc.Submit(ctx, testSchoolID, validApplicant(), []models.AdmissionGuardian{
		{FullName: "Zeynep Demir", Email: "zeynep@example.com", IsPrimary: true},
	}, "")
	require.NoError(t, err)

	for _, adm := range []*models.Admission{adm1, adm2} {
		for _, step := range []models.AdmissionStatus{models.AdmissionUnderReview, models.AdmissionOfferMade, models.AdmissionOfferAccepted} {
			_, err := svc.Transition(ctx, testSchoolID, adm.ID, step, "reviewer-1", "")
			require.NoError(t, err)
		}
		_, _, err := svc.Convert(ctx, testSchoolID, adm.ID)
		require.NoError(t, err)
	}

	assert.Len(t, guardianStore.byEmail, 1)
}

func TestGetByIDUnknownAdmission(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)
	_, err := svc.GetByID(context.Background(), testSchoolID, "missing-id")
	assert.True(t, errors.Is(err, apperrors.ErrAdmissionNotFound))
}

func TestAdmissionIsInvisibleToOtherSchools(t *testing.T) {
	svc, _, _, _ := newTestAdmissionService(t)

	adm := submitAt(t, svc, models.AdmissionSubmitted)
	_, err := svc.GetByID(context.Background(), "another-school", adm.ID)
	assert.ErrorIs(t, err, apperrors.ErrAdmissionNotFound)
}
