package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emre/scolaris/internal/app/models"
	"github.com/emre/scolaris/internal/pkg/apperrors"
)

// AdmissionStore is the narrow persistence interface the lifecycle depends on.
// The production implementation is the Postgres repository; tests inject an
// in-memory one. Status writes are conditional on the expected pre-state so a
// lost race surfaces as a conflict instead of a silent overwrite.
type AdmissionStore interface {
	Create(ctx context.Context, adm *models.Admission) error
	GetByID(ctx context.Context, schoolID, id string) (*models.Admission, error)
	List(ctx context.Context, schoolID string, status *models.AdmissionStatus, page, pageSize int) ([]models.Admission, int, error)
	Update(ctx context.Context, adm *models.Admission) error
	UpdateStatus(ctx context.Context, adm *models.Admission, expected models.AdmissionStatus) error
	MarkConverted(ctx context.Context, schoolID, id, studentID string) error
	Delete(ctx context.Context, schoolID, id string) error
}

// StudentStore is the slice of student persistence the conversion needs
type StudentStore interface {
	CreateFromAdmission(ctx context.Context, s *models.Student) (*models.Student, error)
}

// GuardianStore is the slice of guardian persistence the conversion needs
type GuardianStore interface {
	Create(ctx context.Context, g *models.Guardian) error
	GetByEmail(ctx context.Context, schoolID, email string) (*models.Guardian, error)
}

// AdmissionService owns the admission lifecycle: guarded status transitions
// and the conversion of an accepted application into a student
type AdmissionService interface {
	Submit(ctx context.Context, schoolID string, applicant models.Applicant, guardians []models.AdmissionGuardian, previousSchool string) (*models.Admission, error)
	GetByID(ctx context.Context, schoolID, id string) (*models.Admission, error)
	List(ctx context.Context, schoolID string, status *models.AdmissionStatus, page, pageSize int) ([]models.Admission, int, error)
	Transition(ctx context.Context, schoolID, id string, target models.AdmissionStatus, actorID, notes string) (*models.Admission, error)
	RecordAssessment(ctx context.Context, schoolID, id string, score *float64, notes string) (*models.Admission, error)
	AddDocument(ctx context.Context, schoolID, id, docType, filename, storageKey string) (*models.Admission, error)
	Convert(ctx context.Context, schoolID, id string) (*models.Student, []models.Guardian, error)
	Delete(ctx context.Context, schoolID, id string) error
}

// admissionServiceImpl implements the AdmissionService interface
type admissionServiceImpl struct {
	admissions AdmissionStore
	students   StudentStore
	guardians  GuardianStore
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAdmissionService creates a new admission service instance
func NewAdmissionService(admissions AdmissionStore, students StudentStore, guardians GuardianStore, logger zerolog.Logger) AdmissionService {
	return &admissionServiceImpl{
		admissions: admissions,
		students:   students,
		guardians:  guardians,
		logger:     logger,
		now:        time.Now,
	}
}

// validateSubmission checks the applicant snapshot and the guardian list.
// The guardian invariant is deliberately stricter than permissive intake forms:
// exactly one guardian must be flagged primary, enforced here at submission time.
func validateSubmission(applicant models.Applicant, guardians []models.AdmissionGuardian) error {
	required := map[string]string{
		"firstName":    applicant.FirstName,
		"lastName":     applicant.LastName,
		"gender":       applicant.Gender,
		"nationality":  applicant.Nationality,
		"appliedGrade": applicant.AppliedGrade,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return apperrors.NewValidationError(fmt.Sprintf("%s is required", field))
		}
	}
	if applicant.DateOfBirth.IsZero() {
		return apperrors.NewValidationError("dateOfBirth is required")
	}
	if applicant.PreferredStartDate.IsZero() {
		return apperrors.NewValidationError("preferredStartDate is required")
	}

	if len(guardians) == 0 {
		return apperrors.NewValidationError("at least one guardian is required")
	}
	primaries := 0
	for i, g := range guardians {
		if strings.TrimSpace(g.FullName) == "" {
			return apperrors.NewValidationError(fmt.Sprintf("guardian %d: fullName is required", i+1))
		}
		if strings.TrimSpace(g.Email) == "" {
			return apperrors.NewValidationError(fmt.Sprintf("guardian %d: email is required", i+1))
		}
		if g.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 {
		return apperrors.NewValidationError(fmt.Sprintf("exactly one guardian must be marked primary, got %d", primaries))
	}
	return nil
}

// Submit registers a new application with status submitted
func (s *admissionServiceImpl) Submit(ctx context.Context, schoolID string, applicant models.Applicant, guardians []models.AdmissionGuardian, previousSchool string) (*models.Admission, error) {
	if strings.TrimSpace(schoolID) == "" {
		return nil, apperrors.NewValidationError("school id is required")
	}
	if err := validateSubmission(applicant, guardians); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	adm := &models.Admission{
		ID:                uuid.NewString(),
		SchoolID:          schoolID,
		ApplicationNumber: newApplicationNumber(now),
		Status:            models.AdmissionSubmitted,
		Applicant:         applicant,
		PreviousSchool:    previousSchool,
		Guardians:         guardians,
		Documents:         []models.AdmissionDocument{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.admissions.Create(ctx, adm); err != nil {
		return nil, fmt.Errorf("error creating admission: %w", err)
	}
	s.logger.Info().Str("admissionID", adm.ID).Str("applicationNumber", adm.ApplicationNumber).Msg("Admission submitted")
	return adm, nil
}

// newApplicationNumber allocates a random application number. Uniqueness per
// school is the only hard requirement; the database unique index is the backstop.
func newApplicationNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("ADM-%d-%s", now.Year(), suffix)
}

// GetByID retrieves an admission
func (s *admissionServiceImpl) GetByID(ctx context.Context, schoolID, id string) (*models.Admission, error) {
	adm, err := s.admissions.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrAdmissionNotFound) {
			return nil, apperrors.ErrAdmissionNotFound
		}
		return nil, fmt.Errorf("error retrieving admission: %w", err)
	}
	return adm, nil
}

// List retrieves a school's admissions, optionally filtered by status
func (s *admissionServiceImpl) List(ctx context.Context, schoolID string, status *models.AdmissionStatus, page, pageSize int) ([]models.Admission, int, error) {
	admissions, total, err := s.admissions.List(ctx, schoolID, status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving admissions: %w", err)
	}
	return admissions, total, nil
}

// Transition moves an admission along a permitted edge of the status machine.
// A disallowed pair fails with InvalidTransitionError and leaves the record
// untouched. Decision targets also record who decided and when.
func (s *admissionServiceImpl) Transition(ctx context.Context, schoolID, id string, target models.AdmissionStatus, actorID, notes string) (*models.Admission, error) {
	if _, err := models.ParseAdmissionStatus(string(target)); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	adm, err := s.admissions.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	current := adm.Status
	if !current.CanTransitionTo(target) {
		return nil, apperrors.NewInvalidTransitionError(string(current), string(target))
	}

	// The move out of assessment into a decision is gated on an outcome
	// actually having been recorded.
	if current == models.AdmissionAssessmentScheduled &&
		(target == models.AdmissionOfferMade || target == models.AdmissionRejected) &&
		!adm.HasAssessmentOutcome() {
		return nil, apperrors.NewValidationError("an assessment score or notes must be recorded before a decision")
	}

	now := s.now().UTC()
	adm.Status = target
	adm.UpdatedAt = now
	if target.IsDecision() {
		adm.DecisionNotes = notes
		adm.DecisionBy = actorID
		adm.DecisionDate = &now
	}

	if err := s.admissions.UpdateStatus(ctx, adm, current); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("admissionID", adm.ID).
		Str("from", string(current)).
		Str("to", string(target)).
		Str("actorID", actorID).
		Msg("Admission status transitioned")
	return adm, nil
}

// RecordAssessment stores the assessment outcome. Only valid while the
// admission sits in assessment_scheduled; the status itself does not change.
func (s *admissionServiceImpl) RecordAssessment(ctx context.Context, schoolID, id string, score *float64, notes string) (*models.Admission, error) {
	if score == nil && strings.TrimSpace(notes) == "" {
		return nil, apperrors.NewValidationError("an assessment score or notes is required")
	}

	adm, err := s.admissions.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if adm.Status != models.AdmissionAssessmentScheduled {
		return nil, apperrors.NewInvalidStateError("recording an assessment", string(adm.Status))
	}

	adm.AssessmentScore = score
	adm.AssessmentNotes = notes
	adm.UpdatedAt = s.now().UTC()
	if err := s.admissions.Update(ctx, adm); err != nil {
		return nil, err
	}
	return adm, nil
}

// AddDocument appends an uploaded document reference. Documents may be added
// in any non-terminal status and are never deduplicated by type, so a family
// can resubmit a corrected scan.
func (s *admissionServiceImpl) AddDocument(ctx context.Context, schoolID, id, docType, filename, storageKey string) (*models.Admission, error) {
	if strings.TrimSpace(docType) == "" || strings.TrimSpace(filename) == "" || strings.TrimSpace(storageKey) == "" {
		return nil, apperrors.NewValidationError("document type, filename and storage key are required")
	}

	adm, err := s.admissions.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if adm.Status.IsTerminal() {
		return nil, apperrors.NewInvalidStateError("adding a document", string(adm.Status))
	}

	now := s.now().UTC()
	adm.Documents = append(adm.Documents, models.AdmissionDocument{
		Type:       docType,
		Filename:   filename,
		StorageKey: storageKey,
		UploadedAt: now,
	})
	adm.UpdatedAt = now
	if err := s.admissions.Update(ctx, adm); err != nil {
		return nil, err
	}
	return adm, nil
}

// Convert turns an accepted admission into a Student plus linked Guardians.
// The writes are ordered so the whole operation is all-or-nothing from the
// caller's perspective: the student and guardians land first (idempotently),
// and only then is the admission flipped with a conditional write. A second
// concurrent conversion loses that conditional write and gets a conflict.
func (s *admissionServiceImpl) Convert(ctx context.Context, schoolID, id string) (*models.Student, []models.Guardian, error) {
	adm, err := s.admissions.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, nil, err
	}
	if adm.Status != models.AdmissionOfferAccepted {
		return nil, nil, apperrors.NewInvalidStateError("conversion", string(adm.Status))
	}

	now := s.now().UTC()

	// Enrollment starts on the family's preferred date unless that date has
	// already passed, in which case enrollment starts immediately.
	enrollmentDate := adm.Applicant.PreferredStartDate
	if enrollmentDate.Before(now) {
		enrollmentDate = now
	}

	guardians := make([]models.Guardian, 0, len(adm.Guardians))
	guardianIDs := make([]string, 0, len(adm.Guardians))
	for _, ag := range adm.Guardians {
		g, err := s.findOrCreateGuardian(ctx, schoolID, ag, now)
		if err != nil {
			return nil, nil, err
		}
		guardians = append(guardians, *g)
		guardianIDs = append(guardianIDs, g.ID)
	}

	student := &models.Student{
		// Deriving the id from the admission keeps a retried conversion from
		// minting a second student.
		ID:             uuid.NewSHA1(uuid.NameSpaceOID, []byte("student:"+adm.ID)).String(),
		SchoolID:       schoolID,
		AdmissionID:    adm.ID,
		FirstName:      adm.Applicant.FirstName,
		LastName:       adm.Applicant.LastName,
		DateOfBirth:    adm.Applicant.DateOfBirth,
		Gender:         adm.Applicant.Gender,
		Nationality:    adm.Applicant.Nationality,
		Grade:          adm.Applicant.AppliedGrade,
		EnrollmentDate: enrollmentDate,
		Status:         models.StudentActive,
		GuardianIDs:    guardianIDs,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	student, err = s.students.CreateFromAdmission(ctx, student)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating student from admission: %w", err)
	}

	if err := s.admissions.MarkConverted(ctx, schoolID, adm.ID, student.ID); err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("admissionID", adm.ID).
		Str("studentID", student.ID).
		Int("guardians", len(guardians)).
		Msg("Admission converted to student")
	return student, guardians, nil
}

// findOrCreateGuardian resolves an application guardian to a Guardian record.
// The dedup identity is (school, email): a guardian already known to the
// school is linked, not duplicated.
func (s *admissionServiceImpl) findOrCreateGuardian(ctx context.Context, schoolID string, ag models.AdmissionGuardian, now time.Time) (*models.Guardian, error) {
	existing, err := s.guardians.GetByEmail(ctx, schoolID, ag.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrGuardianNotFound) {
		return nil, fmt.Errorf("error looking up guardian: %w", err)
	}

	g := &models.Guardian{
		ID:           uuid.NewString(),
		SchoolID:     schoolID,
		FullName:     ag.FullName,
		Relationship: ag.Relationship,
		Email:        strings.ToLower(ag.Email),
		Phone:        ag.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.guardians.Create(ctx, g); err != nil {
		// A concurrent conversion may have created the same guardian; the
		// unique index makes that visible here.
		if errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			return s.guardians.GetByEmail(ctx, schoolID, ag.Email)
		}
		return nil, fmt.Errorf("error creating guardian: %w", err)
	}
	return g, nil
}

// Delete removes an admission. Administrative path only.
func (s *admissionServiceImpl) Delete(ctx context.Context, schoolID, id string) error {
	if err := s.admissions.Delete(ctx, schoolID, id); err != nil {
		if errors.Is(err, apperrors.ErrAdmissionNotFound) {
			return apperrors.ErrAdmissionNotFound
		}
		return fmt.Errorf("error deleting admission: %w", err)
	}
	return nil
}
