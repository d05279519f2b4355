package bus

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Topic is the MQTT topic the companion-app bridge subscribes to.
const Topic = "wearable/smartalarm/fired"

// payload is the JSON body published for SmartAlarmFired.
type payload struct {
	SmartAlarm struct {
		Event     string `json:"event"`
		Timestamp string `json:"timestamp"`
	} `json:"smart_alarm"`
}

func formatPayload(at time.Time) ([]byte, error) {
	var p payload
	p.SmartAlarm.Event = "SmartAlarmFired"
	p.SmartAlarm.Timestamp = at.UTC().Format(time.RFC3339)
	return json.Marshal(p)
}

// MQTTPublisher mirrors SmartAlarmFired to a paired companion-app bridge
// over MQTT (NewClientOptions/AddBroker/SetAutoReconnect/Publish-with-
// WaitTimeout), buffering through the ring in buffer.go since the alarm
// fires rarely and the link may be down at that exact moment.
type MQTTPublisher struct {
	mu     sync.Mutex
	client paho.Client
	buf    *ringBuffer
}

// NewMQTTPublisher connects to broker and returns a publisher that
// buffers up to bufferCapacity messages while disconnected, replaying them
// on reconnect.
func NewMQTTPublisher(broker string, bufferCapacity int) (*MQTTPublisher, error) {
	p := &MQTTPublisher{buf: newRingBuffer(bufferCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("smartalarm").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) {
			p.drainBuffer()
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("bus: mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("bus: mqtt connect: %w", err)
	}
	p.client = client
	return p, nil
}

func (p *MQTTPublisher) drainBuffer() {
	p.mu.Lock()
	msgs := p.buf.drainAll()
	p.mu.Unlock()

	for _, m := range msgs {
		token := p.client.Publish(Topic, 1, true, m.payload)
		if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
			log.Printf("bus: failed to replay buffered message: %v", token.Error())
		}
	}
}

func (p *MQTTPublisher) PostSmartAlarmFired(at time.Time) error {
	data, err := formatPayload(at)
	if err != nil {
		return fmt.Errorf("bus: format payload: %w", err)
	}

	if !p.client.IsConnected() {
		p.mu.Lock()
		p.buf.push(bufferedMsg{payload: data})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(Topic, 1, true, data)
	if !token.WaitTimeout(5 * time.Second) {
		p.mu.Lock()
		p.buf.push(bufferedMsg{payload: data})
		p.mu.Unlock()
		return fmt.Errorf("bus: publish timeout")
	}
	if err := token.Error(); err != nil {
		p.mu.Lock()
		p.buf.push(bufferedMsg{payload: data})
		p.mu.Unlock()
		return fmt.Errorf("bus: publish: %w", err)
	}
	return nil
}

// IsConnected reports whether the MQTT client currently holds a live
// connection to the broker.
func (p *MQTTPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
