package parameter

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/core/common/htmlsanitize"
	"github.com/frahmantamala/role-assignment/internal/core/common/validation"
	parameterDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/parameter"
)

type RepositoryAPI interface {
	List() ([]*parameterDatamodel.AppParameter, error)
	GetByKey(key string) (*parameterDatamodel.AppParameter, error)
	// Upsert inserts or replaces the row identified by ParamKey.
	Upsert(p *parameterDatamodel.AppParameter) error
	DeleteByKey(key string) error
}

// Upload is an image received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service struct {
	repo          RepositoryAPI
	files         FileStore
	maxUploadSize int64
	logger        *slog.Logger
}

func NewService(repo RepositoryAPI, files FileStore, maxUploadSize int64, logger *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		files:         files,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

func (s *Service) List() ([]*Parameter, error) {
	rows, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list parameters", "error", err)
		return nil, errors.NewInternalError("failed to list parameters", err)
	}
	out := make([]*Parameter, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

// Public returns text and boolean values keyed by parameter key.
func (s *Service) Public() (PublicParameters, error) {
	params, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make(PublicParameters, len(params))
	for _, p := range params {
		if p.Public() {
			out[p.ParamKey] = p.ParamValue
		}
	}
	return out, nil
}

func (s *Service) Get(key string) (*Parameter, error) {
	row, err := s.repo.GetByKey(key)
	if err != nil {
		s.logger.Error("failed to get parameter", "key", key, "error", err)
		return nil, errors.NewInternalError("failed to get parameter", err)
	}
	if row == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("parameter %q not found", key), errors.ErrCodeParameterNotFound)
	}
	return FromDataModel(row), nil
}

func (s *Service) Save(req SaveRequest) (*Parameter, error) {
	req.ParamKey = strings.TrimSpace(req.ParamKey)
	req.ParamType = strings.ToLower(strings.TrimSpace(req.ParamType))
	if req.ParamType == "" {
		req.ParamType = TypeText
	}

	validator := validation.NewValidator()
	validator.Field("paramKey", req.ParamKey).Required().MaxLength(100)
	validator.Field("paramType", req.ParamType).OneOf(TypeText, TypeImage, TypeBoolean)
	validator.Field("description", req.Description).MaxLength(500)
	if appErr := validator.Validate(); appErr != nil {
		return nil, appErr
	}

	switch req.ParamType {
	case TypeText:
		req.ParamValue = htmlsanitize.Sanitize(req.ParamValue)
	case TypeBoolean:
		v := strings.ToLower(strings.TrimSpace(req.ParamValue))
		if v != "true" && v != "false" {
			return nil, errors.NewValidationFieldError("paramValue", "boolean parameters must be true or false", errors.ErrCodeValidationFailed)
		}
		req.ParamValue = v
	}

	existing, err := s.repo.GetByKey(req.ParamKey)
	if err != nil {
		s.logger.Error("failed to get parameter", "key", req.ParamKey, "error", err)
		return nil, errors.NewInternalError("failed to save parameter", err)
	}

	row := &parameterDatamodel.AppParameter{
		ParamKey:    req.ParamKey,
		ParamValue:  req.ParamValue,
		ParamType:   req.ParamType,
		Description: req.Description,
	}
	if existing != nil {
		row.ID = existing.ID
	}
	if err := s.repo.Upsert(row); err != nil {
		s.logger.Error("failed to save parameter", "key", req.ParamKey, "error", err)
		return nil, errors.NewInternalError("failed to save parameter", err)
	}
	// a stored image is orphaned once its parameter stops being an image
	if existing != nil && existing.ParamType == TypeImage && row.ParamType != TypeImage {
		s.removeFile(existing.ParamValue)
	}
	return FromDataModel(row), nil
}

func (s *Service) SaveImage(key, description string, upload Upload) (*Parameter, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.NewValidationFieldError("paramKey", "paramKey is required", errors.ErrCodeValidationFailed)
	}
	if upload.Body == nil || upload.Size == 0 {
		return nil, errors.NewValidationError("file is required", errors.ErrCodeInvalidFile)
	}
	if upload.Size > s.maxUploadSize {
		return nil, errors.NewValidationError(fmt.Sprintf("file exceeds %d bytes", s.maxUploadSize), errors.ErrCodeInvalidFile)
	}
	mediaType, _, err := mime.ParseMediaType(upload.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, errors.NewValidationError("only image files are allowed", errors.ErrCodeInvalidFile)
	}

	existing, err := s.repo.GetByKey(key)
	if err != nil {
		s.logger.Error("failed to get parameter", "key", key, "error", err)
		return nil, errors.NewInternalError("failed to upload image", err)
	}

	name := fmt.Sprintf("%s_%s%s", fileSafe(key), uuid.NewString(), strings.ToLower(filepath.Ext(upload.Filename)))
	if err := s.files.Save(name, io.LimitReader(upload.Body, s.maxUploadSize)); err != nil {
		s.logger.Error("failed to store image", "key", key, "error", err)
		return nil, errors.NewInternalError("failed to upload image", err)
	}

	row := &parameterDatamodel.AppParameter{
		ParamKey:    key,
		ParamValue:  name,
		ParamType:   TypeImage,
		Description: description,
	}
	if existing != nil {
		row.ID = existing.ID
		if row.Description == "" {
			row.Description = existing.Description
		}
	}
	if err := s.repo.Upsert(row); err != nil {
		s.removeFile(name)
		s.logger.Error("failed to save parameter", "key", key, "error", err)
		return nil, errors.NewInternalError("failed to upload image", err)
	}
	if existing != nil && existing.ParamType == TypeImage && existing.ParamValue != name {
		s.removeFile(existing.ParamValue)
	}

	s.logger.Info("parameter image stored", "key", key, "file", name, "size", upload.Size)
	return FromDataModel(row), nil
}

// OpenImage returns the stored file of an image parameter.
func (s *Service) OpenImage(key string) (*os.File, *Parameter, error) {
	p, err := s.Get(key)
	if err != nil {
		return nil, nil, err
	}
	if p.ParamType != TypeImage || p.ParamValue == "" {
		return nil, nil, errors.NewNotFoundError(fmt.Sprintf("parameter %q has no image", key), errors.ErrCodeParameterNotFound)
	}
	f, err := s.files.Open(p.ParamValue)
	if err != nil {
		s.logger.Warn("parameter image missing", "key", key, "file", p.ParamValue, "error", err)
		return nil, nil, errors.NewNotFoundError(fmt.Sprintf("image for %q not found", key), errors.ErrCodeParameterNotFound)
	}
	return f, p, nil
}

func (s *Service) Delete(key string) error {
	p, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByKey(key); err != nil {
		s.logger.Error("failed to delete parameter", "key", key, "error", err)
		return errors.NewInternalError("failed to delete parameter", err)
	}
	if p.ParamType == TypeImage {
		s.removeFile(p.ParamValue)
	}
	return nil
}

func (s *Service) removeFile(name string) {
	if name == "" {
		return
	}
	if err := s.files.Remove(name); err != nil {
		s.logger.Warn("failed to remove parameter image", "file", name, "error", err)
	}
}

// fileSafe keeps letters, digits, dashes and underscores of a parameter key.
func fileSafe(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
