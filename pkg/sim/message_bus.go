package sim

// Message is one inter-node message routed through a MessageBus.
type Message struct {
	Src           int
	Dst           int
	MsgType       string
	Payload       map[string]any
	TickSent      int
	TickDelivered int
	ID            int
}

// AdversaryHook intercepts messages as they're sent and delivered. A hook
// returning false as its second value drops the message.
type AdversaryHook interface {
	OnSend(msg Message) (Message, bool)
	OnDeliver(msg Message) (Message, bool)
}

// PassthroughHook is a no-op AdversaryHook that observes without
// modifying or dropping anything. Embed it to implement only the hook
// methods an attack actually needs.
type PassthroughHook struct{}

func (PassthroughHook) OnSend(msg Message) (Message, bool)    { return msg, true }
func (PassthroughHook) OnDeliver(msg Message) (Message, bool) { return msg, true }

// MessageBus is the single interception point for inter-node
// communication: every message an adversary could see passes through
// here, either at send time or just before delivery.
type MessageBus struct {
	clock        *Clock
	defaultDelay int
	msgSeq       int
	hooks        []AdversaryHook
	handlers     map[int]func(Message)
	delivered    []Message
}

// NewMessageBus creates a bus ticking against clock, delivering messages
// after defaultDelay ticks unless a call overrides it.
func NewMessageBus(clock *Clock, defaultDelay int) *MessageBus {
	return &MessageBus{
		clock:        clock,
		defaultDelay: defaultDelay,
		handlers:     make(map[int]func(Message)),
	}
}

// RegisterHandler installs the delivery callback for nodeID.
func (b *MessageBus) RegisterHandler(nodeID int, handler func(Message)) {
	b.handlers[nodeID] = handler
}

// AddHook installs an adversary hook, applied to every message sent
// thereafter.
func (b *MessageBus) AddHook(hook AdversaryHook) {
	b.hooks = append(b.hooks, hook)
}

// RemoveHook removes a previously added hook, if present.
func (b *MessageBus) RemoveHook(hook AdversaryHook) {
	for i, h := range b.hooks {
		if h == hook {
			b.hooks = append(b.hooks[:i], b.hooks[i+1:]...)
			return
		}
	}
}

// Send routes a message from src to dst, running it through every
// adversary hook's OnSend first. A delay of -1 uses the bus's default.
func (b *MessageBus) Send(src, dst int, msgType string, payload map[string]any, delay int) error {
	if delay < 0 {
		delay = b.defaultDelay
	}

	msg := Message{
		Src: src, Dst: dst, MsgType: msgType, Payload: payload,
		TickSent: b.clock.Tick(), ID: b.msgSeq,
	}
	b.msgSeq++

	for _, hook := range b.hooks {
		var ok bool
		msg, ok = hook.OnSend(msg)
		if !ok {
			return nil // dropped
		}
	}

	msg.TickDelivered = b.clock.Tick() + delay
	_, err := b.clock.Schedule(delay, func() { b.deliver(msg) })
	return err
}

func (b *MessageBus) deliver(msg Message) {
	for _, hook := range b.hooks {
		var ok bool
		msg, ok = hook.OnDeliver(msg)
		if !ok {
			return // dropped at delivery
		}
	}

	b.delivered = append(b.delivered, msg)
	if handler, ok := b.handlers[msg.Dst]; ok {
		handler(msg)
	}
}

// Broadcast sends a message from src to every registered node except
// itself, or to recipients if given explicitly.
func (b *MessageBus) Broadcast(src int, msgType string, payload map[string]any, recipients []int, delay int) error {
	targets := recipients
	if targets == nil {
		for nid := range b.handlers {
			if nid != src {
				targets = append(targets, nid)
			}
		}
	}
	for _, dst := range targets {
		payloadCopy := make(map[string]any, len(payload))
		for k, v := range payload {
			payloadCopy[k] = v
		}
		if err := b.Send(src, dst, msgType, payloadCopy, delay); err != nil {
			return err
		}
	}
	return nil
}

// DeliveredCount reports how many messages have been delivered so far.
func (b *MessageBus) DeliveredCount() int { return len(b.delivered) }

// AuditLog returns a copy of every delivered message, in delivery order.
func (b *MessageBus) AuditLog() []Message {
	out := make([]Message, len(b.delivered))
	copy(out, b.delivered)
	return out
}

// MessagesBetween returns every delivered message between a and c in
// either direction.
func (b *MessageBus) MessagesBetween(a, c int) []Message {
	var out []Message
	for _, m := range b.delivered {
		if (m.Src == a && m.Dst == c) || (m.Src == c && m.Dst == a) {
			out = append(out, m)
		}
	}
	return out
}
