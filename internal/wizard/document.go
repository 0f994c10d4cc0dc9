// internal/wizard/document.go
package wizard

import (
	"context"
	"errors"
	"fmt"

	"mobility-service/internal/domain/session"
	"mobility-service/internal/i18n"
	xerrors "mobility-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// ErrSavedLocally reports that an edit could not reach the backend and only
// lives in the local cache. The UI shows a warning; the edit is not lost.
var ErrSavedLocally = errors.New("document saved locally only")

// DocumentManager handles per-language document content for one session.
// The server copy is authoritative: switching language always fetches, and
// saving one language never touches the others.
type DocumentManager struct {
	client    *Client
	sessionID string
	language  string
	logger    *zap.Logger

	cache     map[string]string
	localOnly map[string]bool
}

func NewDocumentManager(client *Client, sessionID, language string, logger *zap.Logger) *DocumentManager {
	if !i18n.Known(language) {
		language = i18n.DefaultLanguage
	}
	return &DocumentManager{
		client:    client,
		sessionID: sessionID,
		language:  language,
		logger:    logger,
		cache:     make(map[string]string),
		localOnly: make(map[string]bool),
	}
}

func (d *DocumentManager) Language() string { return d.language }

// IsLocalOnly reports whether a language holds unsynced local edits.
func (d *DocumentManager) IsLocalOnly(language string) bool {
	return d.localOnly[language]
}

// Load fetches the current language's content from the server. When the
// server is unreachable and a cached copy exists, the cache is served as a
// degraded fallback.
func (d *DocumentManager) Load(ctx context.Context) (string, error) {
	resp, err := d.client.GetDocumentContent(ctx, d.sessionID, d.language)
	if err != nil {
		if cached, ok := d.cache[d.language]; ok && !errors.Is(err, xerrors.ErrNotFound) {
			d.logger.Warn("serving cached document, fetch failed",
				zap.String("language", d.language), zap.Error(err))
			return cached, nil
		}
		return "", err
	}

	d.cache[d.language] = resp.Content
	d.localOnly[d.language] = false
	return resp.Content, nil
}

// Save persists edited content for the current language only. A backend
// failure degrades to the local cache and returns ErrSavedLocally.
func (d *DocumentManager) Save(ctx context.Context, content string) error {
	d.cache[d.language] = content

	err := d.client.UpdateDocumentContent(ctx, d.sessionID, &session.UpdateDocumentContentRequest{
		DocumentContent: content,
		Language:        d.language,
	})
	if err != nil {
		d.localOnly[d.language] = true
		d.logger.Warn("document save failed, keeping local copy",
			zap.String("language", d.language), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSavedLocally, err)
	}

	d.localOnly[d.language] = false
	return nil
}

// SwitchLanguage changes the active language and loads its server copy.
// Edits made in the previous language are never mirrored over.
func (d *DocumentManager) SwitchLanguage(ctx context.Context, language string) (string, error) {
	if !i18n.Known(language) {
		return "", fmt.Errorf("%w: unsupported language %q", xerrors.ErrInvalidInput, language)
	}
	d.language = language
	return d.Load(ctx)
}

// Generate asks the backend to render and store every language from the
// given snapshot.
func (d *DocumentManager) Generate(ctx context.Context, req *session.SaveDocumentRequest) (*session.SaveDocumentResponse, error) {
	resp, err := d.client.SaveDocument(ctx, d.sessionID, req)
	if err != nil {
		return nil, err
	}
	// Stored renditions replaced server-side; drop stale cache entries.
	d.cache = make(map[string]string)
	d.localOnly = make(map[string]bool)
	return resp, nil
}
