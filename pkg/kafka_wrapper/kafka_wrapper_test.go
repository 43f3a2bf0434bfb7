package kafkawrapper

import (
	"testing"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

func TestConfigProducer(t *testing.T) {
	c := Config{Brokers: []string{"localhost:9092"}, BatchTimeoutMs: 20}

	p := c.Producer()
	if p.RequiredAcks != kafka.RequireNone || !p.Async || p.BatchTimeout != 20*time.Millisecond {
		t.Errorf("unexpected fire and forget producer %+v", p)
	}

	c.RequireAcks = true
	p = c.Producer()
	if p.RequiredAcks != kafka.RequireAll || p.Async {
		t.Errorf("unexpected acked producer %+v", p)
	}
}

func TestConfigConsumer(t *testing.T) {
	c := Config{Brokers: []string{"b:9092"}, Topic: "events", GroupID: "g", DLQTopic: "events.dlq", WorkerCount: 2, MaxRetries: 3, BatchSize: 100}
	cc := c.Consumer()
	if cc.Topic != "events" || cc.GroupID != "g" || cc.DLQTopic != "events.dlq" || cc.WorkerCount != 2 || cc.MaxRetries != 3 || cc.BatchSize != 100 {
		t.Errorf("unexpected consumer config %+v", cc)
	}
}

func TestNewConsumerGroupValidation(t *testing.T) {
	if _, err := NewConsumerGroup(ConsumerConfig{Topic: "events"}); err == nil {
		t.Error("expected error without brokers")
	}
	if _, err := NewConsumerGroup(ConsumerConfig{Brokers: []string{"b:9092"}}); err == nil {
		t.Error("expected error without topic")
	}
}

func TestBackoffDuration(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	for attempt := 0; attempt < 10; attempt++ {
		d := backoffDuration(min, max, attempt)
		if d < 0 || d > max {
			t.Errorf("attempt %d: %s out of range", attempt, d)
		}
	}
	if backoffDuration(0, 0, 3) != 0 {
		t.Error("zero bounds must give zero backoff")
	}
}

func TestHeadersToMap(t *testing.T) {
	m := headersToMap([]kafka.Header{{Key: "kind", Value: []byte("PLACED")}})
	if m["kind"] != "PLACED" {
		t.Errorf("unexpected headers %v", m)
	}
}
