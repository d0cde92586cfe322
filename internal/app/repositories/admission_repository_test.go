package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/scolaris/internal/app/models"
)

// stubRow feeds column values into a scan the way pgx does: a nil value is a
// SQL NULL and is only accepted by pointer destinations.
type stubRow struct {
	vals []interface{}
}

func (r stubRow) Scan(dest ...interface{}) error {
	if len(dest) != len(r.vals) {
		return fmt.Errorf("expected %d destinations, got %d", len(r.vals), len(dest))
	}
	for i, d := range dest {
		v := r.vals[i]
		switch p := d.(type) {
		case *string:
			if v == nil {
				return fmt.Errorf("cannot scan NULL into *string at column %d", i)
			}
			*p = v.(string)
		case **string:
			if v == nil {
				*p = nil
			} else {
				s := v.(string)
				*p = &s
			}
		case *time.Time:
			if v == nil {
				return fmt.Errorf("cannot scan NULL into *time.Time at column %d", i)
			}
			*p = v.(time.Time)
		case **time.Time:
			if v == nil {
				*p = nil
			} else {
				t := v.(time.Time)
				*p = &t
			}
		case **float64:
			if v == nil {
				*p = nil
			} else {
				f := v.(float64)
				*p = &f
			}
		case *[]byte:
			if v == nil {
				*p = nil
			} else {
				*p = v.([]byte)
			}
		default:
			return fmt.Errorf("unsupported destination type %T at column %d", d, i)
		}
	}
	return nil
}

// undecidedAdmissionRow is a freshly submitted admission as Postgres returns
// it: assessment, decision and student columns all NULL.
func undecidedAdmissionRow() stubRow {
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return stubRow{vals: []interface{}{
		"adm-1", "school-1", "ADM-2026-4F2A1C", "submitted",
		"Leyla", "Kaya", time.Date(2018, 4, 20, 0, 0, 0, 0, time.UTC),
		"female", "TR",
		"grade_1", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), "",
		[]byte(`[{"fullName":"Murat Kaya","email":"murat.kaya@example.com","isPrimary":true}]`),
		[]byte(`[]`),
		nil, "",
		"", nil, nil,
		nil, created, created,
	}}
}

func TestScanAdmissionUndecided(t *testing.T) {
	repo := NewAdmissionRepository(nil)

	adm, err := repo.scanAdmission(undecidedAdmissionRow())
	require.NoError(t, err)

	assert.Equal(t, models.AdmissionSubmitted, adm.Status)
	assert.Nil(t, adm.AssessmentScore)
	assert.Empty(t, adm.DecisionBy)
	assert.Nil(t, adm.DecisionDate)
	assert.Empty(t, adm.StudentID)
	require.Len(t, adm.Guardians, 1)
	assert.True(t, adm.Guardians[0].IsPrimary)
}

func TestScanAdmissionDecided(t *testing.T) {
	repo := NewAdmissionRepository(nil)

	row := undecidedAdmissionRow()
	row.vals[3] = "offer_made"
	row.vals[14] = 87.5
	row.vals[15] = "Strong assessment"
	row.vals[17] = "6fcf0a52-9f35-4d1e-8f0b-3a1c2d4e5f60"
	row.vals[18] = time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC)

	adm, err := repo.scanAdmission(row)
	require.NoError(t, err)

	assert.Equal(t, models.AdmissionOfferMade, adm.Status)
	require.NotNil(t, adm.AssessmentScore)
	assert.Equal(t, 87.5, *adm.AssessmentScore)
	assert.Equal(t, "6fcf0a52-9f35-4d1e-8f0b-3a1c2d4e5f60", adm.DecisionBy)
	require.NotNil(t, adm.DecisionDate)
}

func TestScanAdmissionRejectsUnknownStatus(t *testing.T) {
	repo := NewAdmissionRepository(nil)

	row := undecidedAdmissionRow()
	row.vals[3] = "limbo"

	_, err := repo.scanAdmission(row)
	assert.Error(t, err)
}

// The decision_by and student_id columns are uuid, so the empty string must
// never reach the driver as a parameter: an undecided admission writes NULL.
func TestNullableUUIDParamsEncode(t *testing.T) {
	m := pgtype.NewMap()

	buf, err := m.Encode(pgtype.UUIDOID, pgtype.TextFormatCode, nullIfEmpty(""), nil)
	require.NoError(t, err)
	assert.Nil(t, buf)

	buf, err = m.Encode(pgtype.UUIDOID, pgtype.TextFormatCode, nullIfEmpty("6fcf0a52-9f35-4d1e-8f0b-3a1c2d4e5f60"), nil)
	require.NoError(t, err)
	assert.NotNil(t, buf)
}
