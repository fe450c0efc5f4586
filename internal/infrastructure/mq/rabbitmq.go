package mq

import (
	"context"
	"net"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"cloudy/config"
	"cloudy/internal/application/indexing"
	"cloudy/internal/domain/file"
)

// "Rely on metrics, not guesses."
const bufferSize = 128

type (
	InputCh  = chan indexing.Job
	RabbitMQ struct {
		cfg   config.MQ
		log   *zap.Logger
		conn  *amqp091.Connection
		pubCh *amqp091.Channel
		in    InputCh
	}
)

func New(cfg config.MQ, logger *zap.Logger) *RabbitMQ {
	return &RabbitMQ{
		cfg: cfg,
		log: logger,
		in:  make(chan indexing.Job, bufferSize),
	}
}

func (r *RabbitMQ) Connect(ctx context.Context, dsn string) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	amqpCfg := amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp091.Table{
			"connection_name": "cloudy",
		},
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	}

	var err error
	r.conn, err = amqp091.DialConfig(dsn, amqpCfg)
	if err != nil {
		return err
	}
	r.pubCh, err = r.conn.Channel()
	if err != nil {
		_ = r.conn.Close()
		return err
	}

	r.log.Info("rabbitmq connected successfully")

	return nil
}

func (r *RabbitMQ) Init() error {
	var err error
	if err = r.pubCh.ExchangeDeclare(
		r.cfg.Exchange,
		r.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = r.pubCh.Close()
		return err
	}
	q, err := r.pubCh.QueueDeclare(
		r.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	for _, rk := range indexing.RoutingKeys() {
		if err = r.pubCh.QueueBind(q.Name, rk, r.cfg.Exchange, false, nil); err != nil {
			return err
		}
	}

	return nil
}

func (r *RabbitMQ) ScheduleIndex(f *file.File) { r.enqueue(indexing.NewIndexJob(f)) }

func (r *RabbitMQ) ScheduleRemove(id file.ID) { r.enqueue(indexing.NewRemoveJob(id)) }

// enqueue never blocks the request path. A full buffer drops the job.
func (r *RabbitMQ) enqueue(j indexing.Job) {
	select {
	case r.in <- j:
	default:
		// alert
		r.log.Warn("mq buffer full, job dropped",
			zap.Stringer("job_id", j.ID),
			zap.String("kind", string(j.Kind)),
			zap.Stringer("file_id", j.Target.FileID),
		)
	}
}

func (r *RabbitMQ) PublisherWorker(ctx context.Context) {
	r.log.Info("starting publisher worker")

	defer func() {
		r.log.Info("publisher worker gracefully stopped")
	}()

	for {
		select {
		case j := <-r.in:
			if err := r.publish(ctx, j); err != nil {
				// alert
				r.log.Error("mq publish error", zap.Stringer("job_id", j.ID), zap.Error(err))
			}
		case <-ctx.Done():
			_ = r.pubCh.Close()
			return
		}
	}
}

func (r *RabbitMQ) publish(ctx context.Context, j indexing.Job) error {
	b, err := j.Encode()
	if err != nil {
		return err
	}

	pub := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    j.ID.String(),
		Timestamp:    j.EnqueuedAt,
		Type:         string(j.Kind),
		Body:         b,
	}

	return r.pubCh.PublishWithContext(
		ctx,
		r.cfg.Exchange,
		j.Kind.RoutingKey(),
		true,
		false,
		pub,
	)
}

func (r *RabbitMQ) GetInputChan() chan indexing.Job { return r.in }
func (r *RabbitMQ) GetConn() *amqp091.Connection    { return r.conn }
