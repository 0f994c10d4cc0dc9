// internal/service/upload/service.go
package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"mobility-service/internal/domain/upload"
	xerrors "mobility-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const maxFileSize = 10 << 20 // 10 MB

var allowedMimeTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

type Repository interface {
	Create(ctx context.Context, f *upload.UploadedFile) error
	GetByID(ctx context.Context, id string) (*upload.UploadedFile, error)
	ListBySession(ctx context.Context, sessionID string) ([]upload.UploadedFile, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo    Repository
	dir     string
	baseURL string
	logger  *zap.Logger
}

func NewService(repo Repository, uploadDir, publicBaseURL string, logger *zap.Logger) *Service {
	return &Service{repo: repo, dir: uploadDir, baseURL: publicBaseURL, logger: logger}
}

// Store validates and writes an uploaded policy document to disk, then
// records it against the session.
func (s *Service) Store(ctx context.Context, sessionID string, header *multipart.FileHeader) (*upload.UploadedFile, error) {
	if header.Size > maxFileSize {
		return nil, fmt.Errorf("%w: file exceeds 10MB", xerrors.ErrInvalidInput)
	}

	mimeType := header.Header.Get("Content-Type")
	ext, ok := allowedMimeTypes[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: only pdf, doc and docx files are accepted", xerrors.ErrInvalidInput)
	}

	id := ulid.Make().String()
	fileName := id + ext

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload dir: %w", err)
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	f := &upload.UploadedFile{
		ID:           id,
		SessionID:    sessionID,
		OriginalName: header.Filename,
		FileName:     fileName,
		FileURL:      fmt.Sprintf("%s/uploads/%s", s.baseURL, fileName),
		FileSize:     header.Size,
		MimeType:     mimeType,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		os.Remove(filepath.Join(s.dir, fileName))
		return nil, err
	}

	s.logger.Info("file uploaded",
		zap.String("session_id", sessionID), zap.String("file_id", id), zap.Int64("size", f.FileSize))

	return f, nil
}

func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]upload.UploadedFile, error) {
	return s.repo.ListBySession(ctx, sessionID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, f.FileName)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove stored file", zap.String("file_id", id), zap.Error(err))
	}
	return nil
}

// Analyze scans a stored upload for car-category hints. It is a best-effort
// text heuristic; binary formats that yield no readable text produce an
// empty suggestion list, never an error.
func (s *Service) Analyze(ctx context.Context, id string) ([]upload.CarCategoryInfo, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, f.FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}

	return extractCategories(string(raw), f.OriginalName), nil
}

var (
	categoryLinePattern = regexp.MustCompile(`(?i)(budget|mid[- ]?range|premium|cat(?:egor(?:y|ie))?\s*\w*)[^\n€$]{0,40}[€$]\s*([0-9][0-9.,]*)`)
	amountPattern       = regexp.MustCompile(`[€$]\s*([0-9][0-9.,]*)`)
	costKeywords        = map[string]string{
		"cleaning":  "cleaning",
		"schoonmaa": "cleaning",
		"nettoyage": "cleaning",
		"parking":   "parking",
		"parkeer":   "parking",
		"fuel card": "fuelCard",
		"tankkaart": "fuelCard",
		"carburant": "fuelCard",
	}
)

func extractCategories(text, source string) []upload.CarCategoryInfo {
	matches := categoryLinePattern.FindAllStringSubmatch(text, 10)

	out := []upload.CarCategoryInfo{}
	for _, m := range matches {
		amount, ok := parseAmount(m[2])
		if !ok {
			continue
		}
		info := upload.CarCategoryInfo{
			CategoryName:  strings.TrimSpace(m[1]),
			MonthlyBudget: &amount,
			Confidence:    0.6,
			Source:        source,
		}
		out = append(out, info)
	}

	// Cost lines apply to every detected category.
	lower := strings.ToLower(text)
	for keyword, field := range costKeywords {
		idx := strings.Index(lower, keyword)
		if idx < 0 {
			continue
		}
		window := text[idx:min(idx+80, len(text))]
		am := amountPattern.FindStringSubmatch(window)
		if am == nil {
			continue
		}
		amount, ok := parseAmount(am[1])
		if !ok {
			continue
		}
		for i := range out {
			switch field {
			case "cleaning":
				out[i].CleaningCost = ptr(amount)
			case "parking":
				out[i].ParkingCost = ptr(amount)
			case "fuelCard":
				out[i].FuelCard = ptr(amount)
			}
		}
	}

	return out
}

func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func ptr(v float64) *float64 { return &v }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
