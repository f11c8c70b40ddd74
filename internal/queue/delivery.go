package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Delivery is a consumed job awaiting settlement. Exactly one of Ack,
// DeadLetter or Requeue must be called.
type Delivery interface {
	Job() *Job
	// Ack removes the job from the queue
	Ack() error
	// DeadLetter routes the job to the DLQ
	DeadLetter() error
	// Requeue returns the job to the work queue for immediate redelivery
	Requeue() error
	// Redelivered reports whether the broker delivered the job before
	Redelivered() bool
}

// amqpDelivery settles a job on the channel it was consumed from
type amqpDelivery struct {
	job *Job
	d   amqp.Delivery
}

func (m *amqpDelivery) Job() *Job { return m.job }

func (m *amqpDelivery) Ack() error {
	return m.d.Ack(false)
}

// DeadLetter relies on the work queue's x-dead-letter-exchange
func (m *amqpDelivery) DeadLetter() error {
	return m.d.Nack(false, false)
}

func (m *amqpDelivery) Requeue() error {
	return m.d.Nack(false, true)
}

func (m *amqpDelivery) Redelivered() bool { return m.d.Redelivered }

var _ Delivery = (*amqpDelivery)(nil)
