package reconstruct

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/route-reconstructor/internal/delivery/notify"
	"github.com/route-reconstructor/internal/domain"
	"github.com/route-reconstructor/internal/domain/repository"
	"github.com/route-reconstructor/internal/infrastructure/render"
	"github.com/route-reconstructor/internal/usecase"
	"github.com/route-reconstructor/internal/worker"
)

const (
	defaultBatchSize = 10
	emptyQueueSleep  = 100 * time.Millisecond // пауза если очередь пуста
	errorSleep       = time.Second
)

// Reconstructor - часть RouteReconstructUseCase, нужная воркеру
type Reconstructor interface {
	ReconstructAsset(ctx context.Context, name string, session usecase.Session) (*domain.ReconstructionResult, error)
}

// RouteReconstructWorker читает stream:route:reconstruct, восстанавливает маршрут
// по ассету из события и публикует результат в stream:route:done
type RouteReconstructWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	uc           Reconstructor
	defaultAsset string
	batchSize    int
	consumerName string
}

// NewRouteReconstructWorker создает новый RouteReconstructWorker
func NewRouteReconstructWorker(
	streamRepo repository.StreamRepository,
	uc Reconstructor,
	consumerGroup string,
	defaultAsset string,
	batchSize int,
	logger *zap.Logger,
) *RouteReconstructWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &RouteReconstructWorker{
		BaseWorker:   worker.NewBaseWorker("route-reconstruct", consumerGroup, logger),
		streamRepo:   streamRepo,
		uc:           uc,
		defaultAsset: defaultAsset,
		batchSize:    batchSize,
		consumerName: consumerName,
	}
}

// Start запускает воркер
func (w *RouteReconstructWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting RouteReconstructWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("batch_size", w.batchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamRouteReconstruct, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil
		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()
		default:
		}

		processed, err := w.processBatch(ctx)
		if err != nil {
			logger.Error("Failed to process batch", zap.Error(err))
			w.Pause(ctx, errorSleep)
			continue
		}

		if processed == 0 {
			w.Pause(ctx, emptyQueueSleep)
		}
	}
}

// processBatch читает и обрабатывает пачку сообщений.
// Возвращает количество прочитанных сообщений.
func (w *RouteReconstructWorker) processBatch(ctx context.Context) (int, error) {
	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamRouteReconstruct,
		w.ConsumerGroup(),
		w.consumerName,
		w.batchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil
	}

	w.Logger().Debug("Processing batch", zap.Int("message_count", len(messages)))

	for _, msg := range messages {
		if err := w.handleMessage(ctx, msg); err != nil {
			return 0, err
		}
	}

	return len(messages), nil
}

// handleMessage обрабатывает одно событие. Ошибка возвращается только при
// отмене контекста, сообщение тогда остаётся в pending.
func (w *RouteReconstructWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) error {
	logger := w.Logger()

	event, err := parseMessage(msg)
	if err != nil {
		logger.Warn("Failed to parse message, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		// ACK битое сообщение чтобы не застревало
		_ = w.streamRepo.AckMessage(ctx, domain.StreamRouteReconstruct, w.ConsumerGroup(), msg.ID)
		return nil
	}

	if event.RequestID == uuid.Nil {
		event.RequestID = uuid.New()
	}

	done := w.reconstruct(ctx, event)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := w.streamRepo.PublishToStream(ctx, domain.StreamRouteDone, done); err != nil {
		logger.Error("Failed to publish done event",
			zap.String("request_id", event.RequestID.String()),
			zap.Error(err))
	}

	if err := w.streamRepo.AckMessage(ctx, domain.StreamRouteReconstruct, w.ConsumerGroup(), msg.ID); err != nil {
		logger.Error("Failed to ack message", zap.String("message_id", msg.ID), zap.Error(err))
	}

	return nil
}

// reconstruct выполняет одну сессию со своим рендерером и сборщиком уведомлений
func (w *RouteReconstructWorker) reconstruct(
	ctx context.Context,
	event *domain.RouteReconstructEvent,
) *domain.RouteReconstructDoneEvent {
	asset := event.AssetOrDefault(w.defaultAsset)
	renderer := render.NewGeoJSONRenderer()
	collector := notify.NewCollector()

	done := &domain.RouteReconstructDoneEvent{
		RequestID: event.RequestID,
		Asset:     asset,
	}

	result, err := w.uc.ReconstructAsset(ctx, asset, usecase.Session{
		Renderer: renderer,
		Notifier: collector,
	})
	done.Notifications = collector.Messages()
	if err != nil {
		done.Error = err.Error()
		return done
	}

	done.TrackPoints = result.TrackPoints
	summary := result.Summary
	done.Summary = &summary

	geoJSON, err := json.Marshal(renderer)
	if err != nil {
		w.Logger().Error("Failed to marshal GeoJSON", zap.Error(err))
		done.Error = err.Error()
		return done
	}
	done.GeoJSON = geoJSON

	return done
}

// parseMessage парсит сообщение из стрима в RouteReconstructEvent
func parseMessage(msg domain.StreamMessage) (*domain.RouteReconstructEvent, error) {
	if msg.Data == "" {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var event domain.RouteReconstructEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}
