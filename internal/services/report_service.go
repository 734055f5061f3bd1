package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *reportService) SectionReport(ctx context.Context, teacherID, subjectID, sectionID uint) ([]byte, error) {
	quizzes, err := s.repo.Quiz().GetBySubjectSection(ctx, teacherID, subjectID, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve quizzes: %w", err)
	}

	quizByID := make(map[uint]*models.Quiz, len(quizzes))
	quizIDs := make([]uint, 0, len(quizzes))
	for _, quiz := range quizzes {
		quizByID[quiz.ID] = quiz
		quizIDs = append(quizIDs, quiz.ID)
	}

	summaries, err := s.repo.Summary().ListByQuizIDs(ctx, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load score summaries: %w", err)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].QuizID != summaries[j].QuizID {
			return summaries[i].QuizID < summaries[j].QuizID
		}
		if summaries[i].StudentName != summaries[j].StudentName {
			return summaries[i].StudentName < summaries[j].StudentName
		}
		return summaries[i].AttemptNumber < summaries[j].AttemptNumber
	})

	f := excelize.NewFile()
	sheetName := "Scores"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Quiz", "Student ID", "Student Name", "Attempt", "Score", "Max Score", "Percentage", "Submitted At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, summary := range summaries {
		quizTitle := ""
		if quiz, ok := quizByID[summary.QuizID]; ok {
			quizTitle = quiz.Title
		}

		percentage := 0.0
		if summary.MaxScore > 0 {
			percentage = summary.Score / summary.MaxScore * 100
		}

		row := []interface{}{
			quizTitle,
			summary.StudentID,
			summary.StudentName,
			summary.AttemptNumber,
			summary.Score,
			summary.MaxScore,
			fmt.Sprintf("%.1f%%", percentage),
			summary.SubmittedAt.Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Section report generated",
		"teacher_id", teacherID,
		"subject_id", subjectID,
		"section_id", sectionID,
		"rows", len(summaries))

	return buf.Bytes(), nil
}
