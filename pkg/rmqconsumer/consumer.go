package rmqconsumer

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"cloudy/config"
)

// can scale depends on a parallel worker count
const preFetchCount = 1

// Handler processes one delivery. A non-nil error rejects the message
// without requeue.
type Handler func(routingKey string, body []byte) error

type Consumer struct {
	cfg         config.MQ
	log         *zap.Logger
	routingKeys []string
	handle      Handler
	conn        *amqp091.Connection
	chConsume   *amqp091.Channel
	chDelivery  <-chan amqp091.Delivery
}

func New(
	cfg config.MQ,
	logger *zap.Logger,
	conn *amqp091.Connection,
	routingKeys []string,
	handle Handler,
) *Consumer {
	return &Consumer{
		cfg:         cfg,
		log:         logger,
		conn:        conn,
		routingKeys: routingKeys,
		handle:      handle,
	}
}

func (c *Consumer) Connect(dsn string) error {
	var err error
	c.conn, err = amqp091.Dial(dsn)
	if err != nil {
		c.conn = nil
		return fmt.Errorf("amqp dial: %w", err)
	}
	return c.openChannel()
}

func (c *Consumer) openChannel() error {
	var err error
	c.chConsume, err = c.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}

	c.log.Info("rabbitmq consumer connected successfully")

	return nil
}

func (c *Consumer) Init() error {
	if err := c.chConsume.ExchangeDeclare(
		c.cfg.Exchange,
		c.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := c.chConsume.QueueDeclare(
		c.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	for _, rk := range c.routingKeys {
		if err := c.chConsume.QueueBind(
			c.cfg.QueueName,
			rk,
			c.cfg.Exchange,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("queue bind %s: %w", rk, err)
		}
	}

	if err := c.chConsume.Qos(preFetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	var err error
	c.chDelivery, err = c.chConsume.Consume(
		c.cfg.QueueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	return nil
}

func (c *Consumer) DeliveryWorker(ctx context.Context) {
	c.log.Info("starting delivery worker")

	defer func() {
		c.log.Info("delivery worker gracefully stopped")
	}()

	for {
		select {
		case msg, ok := <-c.chDelivery:
			if !ok {
				c.log.Warn("delivery channel closed")
				return
			}
			if err := c.delivery(msg); err != nil {
				// alert
				c.log.Error("mq read message error",
					zap.String("routing_key", msg.RoutingKey),
					zap.String("message_id", msg.MessageId),
					zap.Error(err),
				)
			}
		case <-ctx.Done():
			_ = c.chConsume.Close()
			return
		}
	}
}

// acknowledger is the part of amqp091.Delivery delivery needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Consumer) delivery(msg amqp091.Delivery) error {
	return c.dispatch(msg.RoutingKey, msg.Body, msg)
}

func (c *Consumer) dispatch(routingKey string, body []byte, ack acknowledger) error {
	if err := c.handle(routingKey, body); err != nil {
		if nerr := ack.Nack(false, false); nerr != nil {
			return fmt.Errorf("nack: %w (handler: %v)", nerr, err)
		}
		return err
	}
	return ack.Ack(false)
}
