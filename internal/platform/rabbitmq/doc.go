// Package rabbitmq carries notification task contexts over AMQP.
//
// Publisher sends task contexts to a durable queue with publisher confirms.
// Consumer turns deliveries back into events.TaskRequestEvent values and hands
// them to an events.EventEmitter, acknowledging each delivery only once the
// emitter has accepted it.
package rabbitmq
