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

func newScoreMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func scoreColumns() []string {
	return []string{"id", "student_id", "course_id", "semester_id", "score", "grade", "grade_point", "created_at", "updated_at", "course_code", "course_title", "course_unit"}
}

func TestScoreRepositoryListFiltersByStudent(t *testing.T) {
	db, mock, cleanup := newScoreMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	rows := sqlmock.NewRows(scoreColumns()).
		AddRow("sc-1", "stu-1", "crs-1", "sem-1", 78, "A", 5, time.Now(), time.Now(), "CSC301", "Algorithms", 3)
	mock.ExpectQuery("SELECT sc.id, sc.student_id").
		WithArgs("stu-1").
		WillReturnRows(rows)

	scores, err := repo.List(context.Background(), models.ScoreFilter{StudentID: "stu-1"})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "A", scores[0].Grade)
	assert.Equal(t, 3, scores[0].CourseUnit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newScoreMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectExec("INSERT INTO scores").
		WithArgs(sqlmock.AnyArg(), "stu-1", "crs-1", "sem-1", 78, "A", 5, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	score := &models.Score{StudentID: "stu-1", CourseID: "crs-1", SemesterID: "sem-1", Score: 78, Grade: "A", GradePoint: 5}
	require.NoError(t, repo.Upsert(context.Background(), score))
	assert.NotEmpty(t, score.ID)
	assert.False(t, score.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryBulkUpsertRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newScoreMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO scores").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO scores").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	scores := []models.Score{
		{StudentID: "stu-1", CourseID: "crs-1", SemesterID: "sem-1", Score: 78, Grade: "A", GradePoint: 5},
		{StudentID: "stu-1", CourseID: "crs-2", SemesterID: "sem-1", Score: 55, Grade: "C", GradePoint: 3},
	}
	err := repo.BulkUpsert(context.Background(), scores)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryFetchBySemester(t *testing.T) {
	db, mock, cleanup := newScoreMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	rows := sqlmock.NewRows(scoreColumns()).
		AddRow("sc-1", "stu-1", "crs-1", "sem-1", 78, "A", 5, time.Now(), time.Now(), "CSC301", "Algorithms", 3).
		AddRow("sc-2", "stu-1", "crs-2", "sem-1", 55, "C", 3, time.Now(), time.Now(), "CSC305", "Databases", 2)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE sc.student_id = $1 AND sc.semester_id = $2")).
		WithArgs("stu-1", "sem-1").
		WillReturnRows(rows)

	scores, err := repo.FetchBySemester(context.Background(), "stu-1", "sem-1")
	require.NoError(t, err)
	assert.Len(t, scores, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newScoreMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scores WHERE id = $1")).
		WithArgs("sc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "sc-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
