package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/route-reconstructor/internal/delivery/notify"
	"github.com/route-reconstructor/internal/domain"
	"github.com/route-reconstructor/internal/infrastructure/render"
	"github.com/route-reconstructor/internal/pkg/errors"
	"github.com/route-reconstructor/internal/pkg/utils"
	"github.com/route-reconstructor/internal/pkg/validator"
	"github.com/route-reconstructor/internal/usecase"
	"github.com/route-reconstructor/internal/usecase/dto"
)

const defaultUploadName = "upload.gpx"

// RouteReconstructor - операции RouteReconstructUseCase, доступные по HTTP
type RouteReconstructor interface {
	ReconstructAsset(ctx context.Context, name string, session usecase.Session) (*domain.ReconstructionResult, error)
	ReconstructReader(ctx context.Context, name string, r io.Reader, session usecase.Session) (*domain.ReconstructionResult, error)
	ListAssets(ctx context.Context) ([]string, error)
}

// RouteHandler - обработчик запросов восстановления маршрута
type RouteHandler struct {
	uc           RouteReconstructor
	defaultAsset string
	logger       *zap.Logger
}

// NewRouteHandler - создание нового RouteHandler
func NewRouteHandler(uc RouteReconstructor, defaultAsset string, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		uc:           uc,
		defaultAsset: defaultAsset,
		logger:       logger,
	}
}

// ListAssets godoc
// @Summary Список GPX ассетов
// @Tags Routes
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.AssetListResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/routes/assets [get]
func (h *RouteHandler) ListAssets(c *fiber.Ctx) error {
	assets, err := h.uc.ListAssets(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to list assets", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.AssetListResponse{
		Assets:  assets,
		Default: h.defaultAsset,
	}, &utils.Meta{Total: len(assets)})
}

// Reconstruct godoc
// @Summary Восстановление маршрута по GPX ассету
// @Description Берёт первый трек ассета, строит автомобильный маршрут через все его точки и возвращает его как GeoJSON
// @Tags Routes
// @Accept json
// @Produce json
// @Param request body dto.ReconstructRequest true "Имя ассета"
// @Success 200 {object} utils.SuccessResponse{data=dto.ReconstructResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/routes/reconstruct [post]
func (h *RouteHandler) Reconstruct(c *fiber.Ctx) error {
	var req dto.ReconstructRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("Invalid request body"))
		}
	}
	if req.Asset == "" {
		req.Asset = h.defaultAsset
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidAssetName.WithDetails(map[string]interface{}{
			"asset": req.Asset,
		}))
	}

	return h.run(c, func(session usecase.Session) (*domain.ReconstructionResult, error) {
		return h.uc.ReconstructAsset(c.UserContext(), req.Asset, session)
	})
}

// ReconstructUpload godoc
// @Summary Восстановление маршрута по загруженному GPX
// @Description Принимает GPX телом запроса (application/gpx+xml) или multipart полем file
// @Tags Routes
// @Accept application/gpx+xml
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "GPX файл"
// @Success 200 {object} utils.SuccessResponse{data=dto.ReconstructResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/routes/reconstruct/upload [post]
func (h *RouteHandler) ReconstructUpload(c *fiber.Ctx) error {
	name, body, err := h.readUpload(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	if body == nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("GPX body is empty"))
	}
	defer body.Close()

	return h.run(c, func(session usecase.Session) (*domain.ReconstructionResult, error) {
		return h.uc.ReconstructReader(c.UserContext(), name, body, session)
	})
}

// readUpload достаёт GPX из multipart поля file или из тела запроса
func (h *RouteHandler) readUpload(c *fiber.Ctx) (string, io.ReadCloser, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", nil, errors.ErrInvalidRequest.WithMessage("multipart field 'file' is required")
		}
		f, err := fh.Open()
		if err != nil {
			return "", nil, errors.ErrAssetRead.Wrap(err)
		}
		name := fh.Filename
		if name == "" {
			name = defaultUploadName
		}
		return name, f, nil
	}

	raw := c.Body()
	if len(raw) == 0 {
		return "", nil, nil
	}

	return c.Query("name", defaultUploadName), io.NopCloser(bytes.NewReader(raw)), nil
}

// run выполняет одну сессию с собственным рендерером и сборщиком уведомлений
func (h *RouteHandler) run(
	c *fiber.Ctx,
	reconstruct func(usecase.Session) (*domain.ReconstructionResult, error),
) error {
	renderer := render.NewGeoJSONRenderer()
	collector := notify.NewCollector()

	result, err := reconstruct(usecase.Session{
		Renderer: renderer,
		Notifier: collector,
	})
	if err != nil {
		return utils.SendError(c, err, collector.Messages()...)
	}

	geoJSON, err := json.Marshal(renderer)
	if err != nil {
		h.logger.Error("Failed to marshal GeoJSON", zap.Error(err))
		return utils.SendError(c, errors.ErrInternalServer)
	}

	return utils.SendSuccess(c, dto.ReconstructResponse{
		RequestID:   result.RequestID,
		Source:      result.Source,
		TrackPoints: result.TrackPoints,
		Summary:     result.Summary,
		GeoJSON:     geoJSON,
	}, &utils.Meta{
		TimeMSec: float64(result.Duration.Microseconds()) / 1000,
	})
}
