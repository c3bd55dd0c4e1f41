package charting

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Publisher delivers a payload to every subscriber of topic.
type Publisher interface {
	Publish(topic string, payload []byte)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, []byte) {}

const (
	EventCreate  = "create"
	EventUpdate  = "update"
	EventDestroy = "destroy"
)

// Event is the message sent to browsers for every chart lifecycle change.
type Event struct {
	Event  string  `json:"event"`
	Chart  string  `json:"chart"`
	Config *Config `json:"config,omitempty"`
}

// LiveRenderer creates charts that stream their lifecycle to a topic.
type LiveRenderer struct {
	pub   Publisher
	topic string
}

func NewLiveRenderer(pub Publisher, topic string) *LiveRenderer {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &LiveRenderer{pub: pub, topic: topic}
}

func (r *LiveRenderer) NewChart(cfg *Config) (Chart, error) {
	c := &liveChart{
		id:    uuid.NewString(),
		cfg:   cfg,
		pub:   r.pub,
		topic: r.topic,
	}
	if err := c.publish(EventCreate, true); err != nil {
		return nil, err
	}
	return c, nil
}

type liveChart struct {
	mu        sync.Mutex
	id        string
	cfg       *Config
	pub       Publisher
	topic     string
	destroyed bool
}

func (c *liveChart) ID() string { return c.id }

func (c *liveChart) Config() *Config { return c.cfg }

func (c *liveChart) Update() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrDestroyed
	}
	return c.publish(EventUpdate, true)
}

func (c *liveChart) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true
	_ = c.publish(EventDestroy, false)
}

func (c *liveChart) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

func (c *liveChart) publish(event string, withConfig bool) error {
	ev := Event{Event: event, Chart: c.id}
	if withConfig {
		ev.Config = c.cfg
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	c.pub.Publish(c.topic, payload)
	return nil
}
