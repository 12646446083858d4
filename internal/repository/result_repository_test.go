package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DELONE-de/cgpa-cal-api/internal/models"
)

func newResultMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestResultRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newResultMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("INSERT INTO semester_results").
		WithArgs(sqlmock.AnyArg(), "stu-1", "sem-1", 5, 21, 4.2, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	result := &models.SemesterResult{StudentID: "stu-1", SemesterID: "sem-1", TotalUnits: 5, TotalPoints: 21, GPA: 4.2}
	require.NoError(t, repo.Upsert(context.Background(), result))
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.CalculatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryFindByStudentAndSemester(t *testing.T) {
	db, mock, cleanup := newResultMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "semester_id", "total_units", "total_points", "gpa", "finalized", "calculated_at"}).
		AddRow("res-1", "stu-1", "sem-1", 5, 21, 4.2, true, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE student_id = $1 AND semester_id = $2")).
		WithArgs("stu-1", "sem-1").
		WillReturnRows(rows)

	result, err := repo.FindByStudentAndSemester(context.Background(), "stu-1", "sem-1")
	require.NoError(t, err)
	assert.True(t, result.Finalized)
	assert.InDelta(t, 4.2, result.GPA, 0.0001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newResultMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "semester_id", "total_units", "total_points", "gpa", "finalized", "calculated_at", "session", "label", "level"}).
		AddRow("res-1", "stu-1", "sem-1", 5, 21, 4.2, false, time.Now(), "2023/2024", "FIRST", 300).
		AddRow("res-2", "stu-1", "sem-2", 4, 12, 3.0, false, time.Now(), "2023/2024", "SECOND", 300)
	mock.ExpectQuery("FROM semester_results r").
		WithArgs("stu-1").
		WillReturnRows(rows)

	results, err := repo.ListByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, models.SemesterFirst, results[0].Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositorySetFinalized(t *testing.T) {
	db, mock, cleanup := newResultMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("UPDATE semester_results SET finalized").
		WithArgs("stu-1", "sem-1", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetFinalized(context.Background(), "stu-1", "sem-1", true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryLatestCGPAByDepartment(t *testing.T) {
	db, mock, cleanup := newResultMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "total_units", "total_points", "semester_count"}).
		AddRow("stu-1", 9, 33, 2).
		AddRow("stu-2", 10, 48, 2)
	mock.ExpectQuery("GROUP BY r.student_id").
		WithArgs("dep-1").
		WillReturnRows(rows)

	summaries, err := repo.LatestCGPAByDepartment(context.Background(), "dep-1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 33, summaries[0].TotalPoints)
	assert.Equal(t, 2, summaries[1].SemesterCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
