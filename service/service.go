package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/foomo/mddocs/scrape"
	"github.com/foomo/mddocs/service/vo"
	"github.com/foomo/mddocs/store"
)

const (
	EventDocumentCreated = "document_created"

	createValidationCode = "CREATE_VALIDATION_FAILED"
	createPathCode       = "CREATE_INVALID_PATH"
	createImportCode     = "CREATE_IMPORT_FAILED"

	msgFieldsRequired = "File path and content are required"
	msgInvalidPath    = "Invalid file path"
)

type Service interface {
	GetDocument(ctx context.Context, slug string) (*vo.Document, error)
	ListDocuments(ctx context.Context) (*vo.Tree, error)
	CreateDocument(ctx context.Context, req vo.CreateRequest) (*vo.CreateResponse, error)
}

// Publisher receives an event for every document created through the service.
type Publisher interface {
	Publish(event string, data any)
}

type Settings struct {
	// AllowImport enables CreateRequest.SourceURL.
	AllowImport bool
	HTTPClient  *http.Client
}

type service struct {
	store     *store.Store
	settings  Settings
	publisher Publisher
}

func NewService(st *store.Store, settings Settings, publisher Publisher) Service {
	if settings.HTTPClient == nil {
		settings.HTTPClient = http.DefaultClient
	}
	return &service{
		store:     st,
		settings:  settings,
		publisher: publisher,
	}
}

func (s *service) GetDocument(ctx context.Context, slug string) (*vo.Document, error) {
	return s.store.Read(ctx, slug)
}

func (s *service) ListDocuments(ctx context.Context) (*vo.Tree, error) {
	return s.store.List(ctx)
}

func (s *service) CreateDocument(ctx context.Context, req vo.CreateRequest) (*vo.CreateResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	content, err := s.resolveContent(ctx, req)
	if err != nil {
		return nil, err
	}

	path, err := s.store.Create(ctx, req.FilePath, content)
	switch {
	case errors.Is(err, store.ErrEmptyPath), errors.Is(err, store.ErrInvalidPath):
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, msgInvalidPath).
			WithTextCode(createPathCode)
	case err != nil:
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(EventDocumentCreated, map[string]string{"path": path})
	}
	return &vo.CreateResponse{Success: true, Path: path}, nil
}

func (s *service) validate(req vo.CreateRequest) error {
	if req.FilePath == "" || (req.Content == "" && req.SourceURL == "") {
		return goerrors.Wrap(errors.New("missing required field"), goerrors.CategoryValidation, msgFieldsRequired).
			WithTextCode(createValidationCode)
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.FilePath, validation.Required),
		validation.Field(&req.Content, validation.When(req.SourceURL == "", validation.Required)),
		validation.Field(&req.Format, validation.In(vo.FormatMarkdown, vo.FormatHTML)),
		validation.Field(&req.SourceURL,
			validation.When(!s.settings.AllowImport, validation.Empty.Error("import from URL is disabled")),
			validation.By(isHTTPURL),
		),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithTextCode(createValidationCode)
	}
	return nil
}

func isHTTPURL(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return validation.NewError("validation_is_http_url", "must be an http or https URL")
	}
	return nil
}

func (s *service) resolveContent(ctx context.Context, req vo.CreateRequest) (string, error) {
	var (
		result *scrape.Result
		err    error
	)
	switch {
	case req.SourceURL != "":
		result, err = scrape.Scrape(ctx, s.settings.HTTPClient, req.SourceURL, req.Selector)
	case req.Format == vo.FormatHTML:
		result, err = scrape.Convert([]byte(req.Content), req.Selector)
	default:
		return req.Content, nil
	}
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf("failed to import HTML: %v", err)).
			WithTextCode(createImportCode)
	}
	return withTitle(result.Title, string(result.Markdown))
}

// withTitle prefixes body with a front-matter block carrying title.
func withTitle(title, body string) (string, error) {
	if title == "" {
		return body, nil
	}
	header, err := yaml.Marshal(struct {
		Title string `yaml:"title"`
	}{Title: title})
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	return "---\n" + string(header) + "---\n\n" + strings.TrimLeft(body, "\n"), nil
}

// IsValidation reports whether err was rejected as invalid client input.
func IsValidation(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

// ValidationMessage returns the client facing message of a validation error.
func ValidationMessage(err error) string {
	var ge *goerrors.Error
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	return err.Error()
}
