package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/DELONE-de/cgpa-cal-api/internal/grading"
	"github.com/DELONE-de/cgpa-cal-api/internal/models"
	appErrors "github.com/DELONE-de/cgpa-cal-api/pkg/errors"
	"github.com/DELONE-de/cgpa-cal-api/pkg/export"
)

type transcriptStudentReader interface {
	Get(ctx context.Context, id string) (*models.StudentDetail, error)
}

type transcriptResultReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.SemesterResultDetail, error)
}

type transcriptScoreReader interface {
	FetchBySemester(ctx context.Context, studentID, semesterID string) ([]models.ScoreDetail, error)
}

var transcriptHeaders = []string{"Session", "Semester", "Course Code", "Course Title", "Unit", "Score", "Grade", "Point", "Weighted"}

// TranscriptService assembles full academic records and renders them for
// download. Assembled transcripts are cached until the next result write.
type TranscriptService struct {
	students   transcriptStudentReader
	results    transcriptResultReader
	scores     transcriptScoreReader
	cache      *CacheService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	schoolName string
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewTranscriptService constructs the transcript service.
func NewTranscriptService(students transcriptStudentReader, results transcriptResultReader, scores transcriptScoreReader, cache *CacheService, schoolName string, cacheTTL time.Duration, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{
		students:   students,
		results:    results,
		scores:     scores,
		cache:      cache,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		schoolName: schoolName,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Get returns the assembled transcript for a student, served from cache when
// one is fresh.
func (s *TranscriptService) Get(ctx context.Context, studentID string) (*models.StudentTranscript, error) {
	cacheKey := "transcript:" + studentID
	if s.cache != nil {
		var cached models.StudentTranscript
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	transcript, err := s.assemble(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, transcript, s.cacheTTL); err != nil {
			s.logger.Warn("transcript cache write failed", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return transcript, nil
}

// ExportCSV renders a transcript as CSV. It returns the bytes and a suggested
// filename.
func (s *TranscriptService) ExportCSV(ctx context.Context, studentID string) ([]byte, string, error) {
	transcript, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, "", err
	}
	data := s.dataset(transcript)
	payload, err := s.csv.Render(data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv transcript")
	}
	return payload, fmt.Sprintf("transcript_%s.csv", transcript.RegNo), nil
}

// ExportPDF renders a transcript as PDF. It returns the bytes and a suggested
// filename.
func (s *TranscriptService) ExportPDF(ctx context.Context, studentID string) ([]byte, string, error) {
	transcript, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, "", err
	}
	title := s.schoolName
	if title == "" {
		title = "Academic Transcript"
	}
	subtitles := []string{
		fmt.Sprintf("%s (%s) - %s", transcript.FullName, transcript.RegNo, transcript.Department),
		fmt.Sprintf("CGPA: %.2f  Class of Degree: %s", transcript.CGPA, transcript.ClassOfDegree),
	}
	payload, err := s.pdf.Render(s.dataset(transcript), title, subtitles...)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf transcript")
	}
	return payload, fmt.Sprintf("transcript_%s.pdf", transcript.RegNo), nil
}

// assemble builds the transcript from stored results and scores. Semester
// totals come from the stored aggregates so the transcript always matches what
// recalculation persisted.
func (s *TranscriptService) assemble(ctx context.Context, studentID string) (*models.StudentTranscript, error) {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	results, err := s.results.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	semesters := make([]models.TranscriptSemester, 0, len(results))
	aggregates := make([]grading.SemesterAggregate, 0, len(results))
	for _, result := range results {
		scores, err := s.scores.FetchBySemester(ctx, studentID, result.SemesterID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript scores")
		}
		courses := make([]models.TranscriptCourse, 0, len(scores))
		for _, score := range scores {
			courses = append(courses, models.TranscriptCourse{
				CourseCode:     score.CourseCode,
				CourseTitle:    score.CourseTitle,
				Unit:           score.CourseUnit,
				Score:          score.Score.Score,
				Grade:          score.Grade,
				GradePoint:     score.GradePoint,
				WeightedPoints: grading.WeightedPoints(score.GradePoint, score.CourseUnit),
			})
		}
		semesters = append(semesters, models.TranscriptSemester{
			SemesterID:  result.SemesterID,
			Session:     result.Session,
			Label:       result.Label,
			Level:       result.Level,
			Courses:     courses,
			TotalUnits:  result.TotalUnits,
			TotalPoints: result.TotalPoints,
			GPA:         result.GPA,
		})
		aggregates = append(aggregates, grading.SemesterAggregate{
			TotalUnits:  result.TotalUnits,
			TotalPoints: result.TotalPoints,
		})
	}

	cgpa := grading.ComputeCGPA(aggregates)
	return &models.StudentTranscript{
		StudentID:     student.ID,
		RegNo:         student.RegNo,
		FullName:      student.FullName,
		Department:    student.DepartmentName,
		Semesters:     semesters,
		TotalUnits:    cgpa.TotalUnits,
		TotalPoints:   cgpa.TotalPoints,
		CGPA:          cgpa.CGPA,
		ClassOfDegree: grading.ClassOfDegree(cgpa.CGPA),
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

func (s *TranscriptService) dataset(transcript *models.StudentTranscript) export.Dataset {
	rows := make([]map[string]string, 0)
	for _, semester := range transcript.Semesters {
		for _, course := range semester.Courses {
			rows = append(rows, map[string]string{
				"Session":      semester.Session,
				"Semester":     string(semester.Label),
				"Course Code":  course.CourseCode,
				"Course Title": course.CourseTitle,
				"Unit":         strconv.Itoa(course.Unit),
				"Score":        strconv.Itoa(course.Score),
				"Grade":        course.Grade,
				"Point":        strconv.Itoa(course.GradePoint),
				"Weighted":     strconv.Itoa(course.WeightedPoints),
			})
		}
	}
	return export.Dataset{Headers: transcriptHeaders, Rows: rows}
}
