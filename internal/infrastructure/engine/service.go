package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
	apperrors "face-quality-scan/internal/errors"
	"face-quality-scan/internal/infrastructure/vision"
)

const (
	UnitQualityAssessment = "QUALITY_ASSESSMENT_ESTIMATOR"

	// AssessmentConfigName конфигурация блока для режима assessment
	AssessmentConfigName = "quality_assessment.xml"
	// DefaultCapturerConfig конфигурация локализатора лиц
	DefaultCapturerConfig = "common_capturer_uld_fda.xml"
)

// BlockConfig параметры создания блока обработки
type BlockConfig struct {
	UnitType           string
	Modification       string
	ConfigName         string
	RuntimeLibraryPath string
}

// QualityBlockConfig собирает конфигурацию блока качества для режима
func QualityBlockConfig(modification string, layout Layout) BlockConfig {
	cfg := BlockConfig{
		UnitType:           UnitQualityAssessment,
		Modification:       modification,
		RuntimeLibraryPath: layout.RuntimeDir,
	}
	if modification == string(entity.ModeAssessment) {
		cfg.ConfigName = AssessmentConfigName
	}
	return cfg
}

// CapturerConfig параметры локализатора
type CapturerConfig struct {
	Name    string
	ConfDir string
}

// ProcessingBlock блок, который читает и дополняет Context на месте
type ProcessingBlock interface {
	Process(ctx Context) error
	io.Closer
}

// LocalizerFactory создаёт локализатор лиц по конфигурации
type LocalizerFactory func(cfg CapturerConfig) (port.FaceLocalizer, error)

// Option настраивает Service
type Option func(*Service)

// WithLocalizerFactory подменяет локализатор лиц
func WithLocalizerFactory(f LocalizerFactory) Option {
	return func(s *Service) { s.localizers = f }
}

// WithThresholds задаёт пороги оценщика качества
func WithThresholds(t Thresholds) Option {
	return func(s *Service) { s.thresholds = t }
}

// Service владеет экземпляром движка и всеми созданными из него блоками
type Service struct {
	layout     Layout
	localizers LocalizerFactory
	thresholds Thresholds

	mu     sync.Mutex
	units  []io.Closer
	closed bool
}

// NewService проверяет раскладку SDK и создаёт сервис
func NewService(layout Layout, opts ...Option) (*Service, error) {
	if _, err := os.Stat(layout.Library); err != nil {
		return nil, apperrors.Config("engine.NewService",
			fmt.Sprintf("engine library %s is not available, try checking the sdk_path", layout.Library), err)
	}
	if info, err := os.Stat(layout.ConfDir); err != nil || !info.IsDir() {
		if err == nil {
			err = errors.New("not a directory")
		}
		return nil, apperrors.Config("engine.NewService",
			fmt.Sprintf("engine config directory %s is not available, try checking the sdk_path", layout.ConfDir), err)
	}

	s := &Service{
		layout:     layout,
		localizers: defaultLocalizer,
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func defaultLocalizer(cfg CapturerConfig) (port.FaceLocalizer, error) {
	c, err := vision.NewCascadeCapturer(cfg.ConfDir, cfg.Name)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Layout возвращает раскладку SDK
func (s *Service) Layout() Layout {
	return s.layout
}

// CreateContext создаёт контекст из обычной карты
func (s *Service) CreateContext(fields map[string]any) Context {
	ctx := make(Context, len(fields))
	for k, v := range fields {
		if m, ok := v.(map[string]any); ok {
			v = s.CreateContext(m)
		}
		ctx[k] = v
	}
	return ctx
}

// CreateProcessingBlock создаёт блок обработки
func (s *Service) CreateProcessingBlock(cfg BlockConfig) (ProcessingBlock, error) {
	if cfg.UnitType != UnitQualityAssessment {
		return nil, apperrors.New(apperrors.KindConfig, "engine.CreateProcessingBlock",
			fmt.Sprintf("unknown unit_type %s", cfg.UnitType))
	}
	mode, err := entity.ParseMode(cfg.Modification)
	if err != nil {
		return nil, apperrors.Config("engine.CreateProcessingBlock",
			fmt.Sprintf("unknown modification %s for %s", cfg.Modification, UnitQualityAssessment), err)
	}

	block := newQualityBlock(mode, cfg, s.thresholds)
	if err := s.track(block); err != nil {
		return nil, err
	}
	return block, nil
}

// CreateCapturer создаёт локализатор лиц
func (s *Service) CreateCapturer(cfg CapturerConfig) (*Capturer, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultCapturerConfig
	}
	if cfg.ConfDir == "" {
		cfg.ConfDir = s.layout.ConfDir
	}
	loc, err := s.localizers(cfg)
	if err != nil {
		return nil, apperrors.Config("engine.CreateCapturer", "cannot create face capturer "+cfg.Name, err)
	}
	c := &Capturer{localizer: loc}
	if err := s.track(c); err != nil {
		_ = loc.Close()
		return nil, err
	}
	return c, nil
}

func (s *Service) track(unit io.Closer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.New(apperrors.KindProcessing, "engine.Service", "service is closed")
	}
	s.units = append(s.units, unit)
	return nil
}

// Close освобождает все блоки в обратном порядке создания
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for i := len(s.units) - 1; i >= 0; i-- {
		if err := s.units[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.units = nil
	return errors.Join(errs...)
}
