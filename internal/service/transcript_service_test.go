package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DELONE-de/cgpa-cal-api/internal/grading"
	"github.com/DELONE-de/cgpa-cal-api/internal/models"
)

type mockTranscriptStudents struct {
	students map[string]*models.StudentDetail
}

func (m *mockTranscriptStudents) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockTranscriptResults struct {
	details []models.SemesterResultDetail
}

func (m *mockTranscriptResults) ListByStudent(ctx context.Context, studentID string) ([]models.SemesterResultDetail, error) {
	return m.details, nil
}

type mockTranscriptScores struct {
	scores map[string][]models.ScoreDetail
}

func (m *mockTranscriptScores) FetchBySemester(ctx context.Context, studentID, semesterID string) ([]models.ScoreDetail, error) {
	return m.scores[semesterID], nil
}

func newTranscriptFixture() (*TranscriptService, *mockTranscriptStudents) {
	students := &mockTranscriptStudents{students: map[string]*models.StudentDetail{
		"stu-1": {
			Student:        models.Student{ID: "stu-1", RegNo: "CSC/20/001", FullName: "Ada Obi", DepartmentID: "dep-1"},
			DepartmentName: "Computer Science",
		},
	}}
	results := &mockTranscriptResults{details: []models.SemesterResultDetail{
		{
			SemesterResult: models.SemesterResult{StudentID: "stu-1", SemesterID: "sem-1", TotalUnits: 5, TotalPoints: 21, GPA: 4.2},
			Session:        "2023/2024", Label: models.SemesterFirst, Level: 300,
		},
		{
			SemesterResult: models.SemesterResult{StudentID: "stu-1", SemesterID: "sem-2", TotalUnits: 4, TotalPoints: 12, GPA: 3.0},
			Session:        "2023/2024", Label: models.SemesterSecond, Level: 300,
		},
	}}
	scores := &mockTranscriptScores{scores: map[string][]models.ScoreDetail{
		"sem-1": {
			{Score: models.Score{Score: 78, Grade: "A", GradePoint: 5}, CourseCode: "CSC301", CourseTitle: "Algorithms", CourseUnit: 3},
			{Score: models.Score{Score: 55, Grade: "C", GradePoint: 3}, CourseCode: "CSC305", CourseTitle: "Databases", CourseUnit: 2},
		},
		"sem-2": {
			{Score: models.Score{Score: 62, Grade: "B", GradePoint: 4}, CourseCode: "CSC310", CourseTitle: "Networks", CourseUnit: 3},
			{Score: models.Score{Score: 40, Grade: "E", GradePoint: 1}, CourseCode: "GST301", CourseTitle: "Entrepreneurship", CourseUnit: 1},
		},
	}}
	svc := NewTranscriptService(students, results, scores, nil, "Unity University", 0, nil)
	return svc, students
}

func TestTranscriptServiceAssemblesFullRecord(t *testing.T) {
	svc, _ := newTranscriptFixture()

	transcript, err := svc.Get(context.Background(), "stu-1")
	require.NoError(t, err)

	assert.Equal(t, "CSC/20/001", transcript.RegNo)
	assert.Equal(t, "Computer Science", transcript.Department)
	require.Len(t, transcript.Semesters, 2)

	first := transcript.Semesters[0]
	assert.Equal(t, "2023/2024", first.Session)
	assert.InDelta(t, 4.2, first.GPA, 0.0001)
	require.Len(t, first.Courses, 2)
	assert.Equal(t, 15, first.Courses[0].WeightedPoints)
	assert.Equal(t, 6, first.Courses[1].WeightedPoints)

	assert.Equal(t, 9, transcript.TotalUnits)
	assert.Equal(t, 33, transcript.TotalPoints)
	assert.InDelta(t, 3.67, transcript.CGPA, 0.0001)
	assert.Equal(t, grading.SecondClassUpper, transcript.ClassOfDegree)
	assert.False(t, transcript.GeneratedAt.IsZero())
}

func TestTranscriptServiceEmptyRecord(t *testing.T) {
	students := &mockTranscriptStudents{students: map[string]*models.StudentDetail{
		"stu-2": {Student: models.Student{ID: "stu-2", RegNo: "CSC/21/002", FullName: "Bola Ade"}},
	}}
	svc := NewTranscriptService(students, &mockTranscriptResults{}, &mockTranscriptScores{}, nil, "", 0, nil)

	transcript, err := svc.Get(context.Background(), "stu-2")
	require.NoError(t, err)
	assert.Empty(t, transcript.Semesters)
	assert.Zero(t, transcript.CGPA)
	assert.Equal(t, grading.Fail, transcript.ClassOfDegree)
}

func TestTranscriptServiceExportCSV(t *testing.T) {
	svc, _ := newTranscriptFixture()

	payload, filename, err := svc.ExportCSV(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "transcript_CSC/20/001.csv", filename)

	content := string(payload)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Course Code")
	assert.Contains(t, content, "CSC301")
	assert.Contains(t, content, "GST301")
}

func TestTranscriptServiceExportPDF(t *testing.T) {
	svc, _ := newTranscriptFixture()

	payload, filename, err := svc.ExportPDF(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "transcript_CSC/20/001.pdf", filename)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}
