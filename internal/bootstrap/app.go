package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"casedesk/internal/ai"
	appsvc "casedesk/internal/app"
	"casedesk/internal/config"
	rabbitmqClient "casedesk/internal/platform/rabbitmq"
	"casedesk/internal/repository"
	"casedesk/internal/worker"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger

	ChatService *appsvc.ChatService
	FileService *appsvc.FileService

	MQConn        *amqp.Connection
	Responder     *worker.LocalResponder
	ReplyConsumer *worker.ReplyConsumer

	StartedAt time.Time
}

// New wires stores, services and the configured responder. The upload
// directory is created up front so a bad storage root fails startup.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	messageRepo := repository.NewMessageRepository()
	fileRepo := repository.NewFileRepository(cfg.UploadRoot(), cfg.Storage.PublicPrefix)

	a := &App{
		Config:      cfg,
		Logger:      logger,
		ChatService: appsvc.NewChatService(messageRepo, logger),
		FileService: appsvc.NewFileService(fileRepo, cfg.Storage.MaxUploadBytes, logger),
		StartedAt:   time.Now(),
	}

	root, err := a.FileService.ResolveStorageRoot()
	if err != nil {
		return nil, fmt.Errorf("prepare upload directory failed: %w", err)
	}
	logger.Info("upload directory ready", "root", root, "mode", cfg.Mode())

	if err := a.startResponder(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) startResponder(ctx context.Context) error {
	rc := a.Config.Responder

	switch rc.Mode {
	case config.ResponderOpenAI:
		generator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
			BaseURL:         rc.BaseURL,
			APIKey:          rc.APIKey,
			Model:           rc.Model,
			SystemPrompt:    rc.SystemPrompt,
			AssistantSender: rc.Sender,
		})
		if err != nil {
			return fmt.Errorf("init llm generator failed: %w", err)
		}
		a.Responder = worker.NewLocalResponder(generator, a.ChatService, worker.LocalResponderOptions{
			Sender:        rc.Sender,
			HistoryWindow: rc.HistoryWindow,
			Timeout:       time.Duration(rc.TimeoutSeconds) * time.Second,
			Logger:        a.Logger,
		})
		if err := a.Responder.Start(ctx); err != nil {
			return fmt.Errorf("start responder failed: %w", err)
		}
		a.ChatService.UsePublisher(a.Responder, rc.Sender)

	case config.ResponderRabbitMQ:
		conn, err := rabbitmqClient.New(ctx, a.Config.RabbitMQ.URL)
		if err != nil {
			return err
		}
		a.MQConn = conn

		publisher, err := rabbitmqClient.NewMessagePublisher(conn, a.Config.RabbitMQ.MessageQueue)
		if err != nil {
			return err
		}
		a.ReplyConsumer = worker.NewReplyConsumer(conn, a.ChatService, a.Config.RabbitMQ.ReplyQueue, rc.Sender, a.Logger)
		if err := a.ReplyConsumer.Start(ctx); err != nil {
			return fmt.Errorf("start reply consumer failed: %w", err)
		}
		a.ChatService.UsePublisher(publisher, rc.Sender)
	}

	a.Logger.Info("responder configured", "mode", rc.Mode, "sender", rc.Sender)
	return nil
}

// ResponderHealthy reports whether the configured responder can still take work.
func (a *App) ResponderHealthy() error {
	if a.Config.Responder.Mode != config.ResponderRabbitMQ {
		return nil
	}
	if a.MQConn == nil || a.MQConn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Responder != nil {
		a.Responder.Close()
	}
	if a.ReplyConsumer != nil {
		a.ReplyConsumer.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
