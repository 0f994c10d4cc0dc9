// internal/service/document/service.go
package document

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"mobility-service/internal/domain/session"
	"mobility-service/internal/i18n"
	xerrors "mobility-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// Repository is the slice of session persistence the document flow needs.
type Repository interface {
	GetSession(ctx context.Context, id string) (*session.UserSession, error)
	UpdateSession(ctx context.Context, id string, req *session.UpdateSessionRequest) error
	SaveDocumentContent(ctx context.Context, sessionID, language, content string) error
	GetDocumentContent(ctx context.Context, sessionID, language string) (string, error)
	ListDocumentLanguages(ctx context.Context, sessionID string) ([]string, error)
	DeleteDocuments(ctx context.Context, sessionID string) error
}

type Service struct {
	repo    Repository
	baseURL string
	logger  *zap.Logger
	tmpl    *template.Template
}

func NewService(repo Repository, publicBaseURL string, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		baseURL: publicBaseURL,
		logger:  logger,
		tmpl:    template.Must(template.New("policy").Parse(policyTemplate)),
	}
}

// Generate renders the policy document in every supported language from the
// posted snapshot and stores each rendition. The document gate must hold on
// the persisted session, not just on the snapshot.
func (s *Service) Generate(ctx context.Context, sessionID string, req *session.SaveDocumentRequest) (*session.SaveDocumentResponse, error) {
	us, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !us.CanGenerateDocument() {
		return nil, fmt.Errorf("%w: session %s has incomplete categories", xerrors.ErrDocumentGate, sessionID)
	}

	generatedAt := req.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	urls := make(map[string]session.DocumentURL, len(i18n.Languages))
	for _, lang := range i18n.Languages {
		content, err := s.render(lang, req.CompanyName, req.UserEmail, req.CarCategories, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to render document: %w", err)
		}
		if err := s.repo.SaveDocumentContent(ctx, sessionID, lang, content); err != nil {
			return nil, err
		}
		urls[lang] = s.documentURL(sessionID, lang)
	}

	docStatus := us.DocumentStatus
	if docStatus == session.DocumentDraft || docStatus == session.DocumentRejected {
		docStatus = session.DocumentPending
	}
	if err := s.repo.UpdateSession(ctx, sessionID, &session.UpdateSessionRequest{
		DocumentStatus: &docStatus,
		DocumentURLs:   urls,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("document generated",
		zap.String("session_id", sessionID), zap.Int("languages", len(urls)))

	return &session.SaveDocumentResponse{DocumentURLs: urls}, nil
}

// Regenerate re-renders every language from the current persisted session
// state. Used after a partner approves, so the approved artifacts match the
// reviewed data.
func (s *Service) Regenerate(ctx context.Context, sessionID string) error {
	us, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	var companyName, email string
	if us.Signup != nil {
		companyName, email = us.Signup.CompanyName, us.Signup.Email
	}

	urls := make(map[string]session.DocumentURL, len(i18n.Languages))
	for _, lang := range i18n.Languages {
		content, err := s.render(lang, companyName, email, us.CarCategories, time.Now())
		if err != nil {
			return fmt.Errorf("failed to render document: %w", err)
		}
		if err := s.repo.SaveDocumentContent(ctx, sessionID, lang, content); err != nil {
			return err
		}
		urls[lang] = s.documentURL(sessionID, lang)
	}

	return s.repo.UpdateSession(ctx, sessionID, &session.UpdateSessionRequest{DocumentURLs: urls})
}

// GetContent returns the stored rendition for one language.
func (s *Service) GetContent(ctx context.Context, sessionID, language string) (*session.DocumentContentResponse, error) {
	if !i18n.Known(language) {
		return nil, fmt.Errorf("%w: unsupported language %q", xerrors.ErrInvalidInput, language)
	}

	content, err := s.repo.GetDocumentContent(ctx, sessionID, language)
	if err != nil {
		return nil, err
	}

	return &session.DocumentContentResponse{Language: language, Content: content}, nil
}

// UpdateContent overwrites one language's rendition with edited content.
// Other languages keep their own stored content untouched.
func (s *Service) UpdateContent(ctx context.Context, sessionID string, req *session.UpdateDocumentContentRequest) error {
	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return err
	}
	return s.repo.SaveDocumentContent(ctx, sessionID, req.Language, req.DocumentContent)
}

func (s *Service) Languages(ctx context.Context, sessionID string) ([]string, error) {
	return s.repo.ListDocumentLanguages(ctx, sessionID)
}

func (s *Service) documentURL(sessionID, lang string) session.DocumentURL {
	return session.DocumentURL{
		PreviewURL:  fmt.Sprintf("%s/api/user-sessions/%s/document-content?language=%s", s.baseURL, sessionID, lang),
		DownloadURL: fmt.Sprintf("%s/api/user-sessions/%s/document-content?language=%s&download=true", s.baseURL, sessionID, lang),
	}
}

type categoryView struct {
	Name                 string
	AnnualKilometers     int
	LeasingDuration      int
	MonthlyTco           string
	ReferenceCar         string
	EmployeeContribution string
	CleaningCost         string
	ParkingCost          string
	FuelCard             string
}

type documentView struct {
	Title        string
	Intro        string
	PreparedFor  string
	CompanyName  string
	Email        string
	GeneratedOn  string
	GeneratedAt  string
	SectionTitle string
	Labels       map[string]string
	Categories   []categoryView
}

func (s *Service) render(lang, companyName, email string, categories []session.CarCategory, generatedAt time.Time) (string, error) {
	view := documentView{
		Title:        i18n.T(lang, "mobilityBudgetPolicy"),
		Intro:        i18n.T(lang, "policyIntroduction"),
		PreparedFor:  i18n.T(lang, "preparedFor"),
		CompanyName:  companyName,
		Email:        email,
		GeneratedOn:  i18n.T(lang, "generatedOn"),
		GeneratedAt:  generatedAt.Format("02/01/2006"),
		SectionTitle: i18n.T(lang, "carCategories"),
		Labels: map[string]string{
			"name":     i18n.T(lang, "categoryName"),
			"km":       i18n.T(lang, "annualKilometers"),
			"duration": i18n.T(lang, "leasingDuration"),
			"tco":      i18n.T(lang, "monthlyTco"),
			"car":      i18n.T(lang, "referenceCar"),
			"employee": i18n.T(lang, "employeeContribution"),
			"cleaning": i18n.T(lang, "cleaningCost"),
			"parking":  i18n.T(lang, "parkingCost"),
			"fuelCard": i18n.T(lang, "fuelCard"),
		},
	}

	for i := range categories {
		c := &categories[i]
		cv := categoryView{
			Name:                 c.Name,
			AnnualKilometers:     c.AnnualKilometers,
			LeasingDuration:      c.LeasingDuration,
			EmployeeContribution: formatContribution(c.EmployeeContribution),
			CleaningCost:         formatContribution(c.CleaningCost),
			ParkingCost:          formatContribution(c.ParkingCost),
			FuelCard:             formatContribution(c.FuelCard),
		}
		if c.MonthlyTco != nil {
			cv.MonthlyTco = fmt.Sprintf("€ %.2f", *c.MonthlyTco)
		}
		if c.ReferenceCar != nil {
			cv.ReferenceCar = fmt.Sprintf("%s %s (%s)", c.ReferenceCar.Brand, c.ReferenceCar.Model, c.ReferenceCar.FuelType)
		}
		view.Categories = append(view.Categories, cv)
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatContribution(c session.Contribution) string {
	if !c.Enabled {
		return "-"
	}
	return fmt.Sprintf("€ %.2f", c.Amount)
}

const policyTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.PreparedFor}}: <strong>{{.CompanyName}}</strong> ({{.Email}})</p>
<p>{{.GeneratedOn}}: {{.GeneratedAt}}</p>
<p>{{.Intro}}</p>
<h2>{{.SectionTitle}}</h2>
{{range .Categories}}
<section>
  <h3>{{.Name}}</h3>
  <table>
    <tr><td>{{$.Labels.km}}</td><td>{{.AnnualKilometers}}</td></tr>
    <tr><td>{{$.Labels.duration}}</td><td>{{.LeasingDuration}}</td></tr>
    <tr><td>{{$.Labels.tco}}</td><td>{{.MonthlyTco}}</td></tr>
    <tr><td>{{$.Labels.car}}</td><td>{{.ReferenceCar}}</td></tr>
    <tr><td>{{$.Labels.employee}}</td><td>{{.EmployeeContribution}}</td></tr>
    <tr><td>{{$.Labels.cleaning}}</td><td>{{.CleaningCost}}</td></tr>
    <tr><td>{{$.Labels.parking}}</td><td>{{.ParkingCost}}</td></tr>
    <tr><td>{{$.Labels.fuelCard}}</td><td>{{.FuelCard}}</td></tr>
  </table>
</section>
{{end}}
</body>
</html>`
