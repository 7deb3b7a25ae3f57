package chatsync

import "encoding/json"

// Dispatcher routes inbound frames and state changes to registered callbacks.
type Dispatcher struct {
	onMessage      func(Message)
	onStateChanged func(StateEvent)
	onError        func(error)
}

func (d *Dispatcher) SetOnMessage(fn func(Message))         { d.onMessage = fn }
func (d *Dispatcher) SetOnStateChanged(fn func(StateEvent)) { d.onStateChanged = fn }
func (d *Dispatcher) SetOnError(fn func(error))             { d.onError = fn }

// Dispatch decodes one inbound frame and forwards it. A frame that fails to
// decode, or that lacks message_id or room_id, is dropped with an error
// callback; it must never stop the read loop or reach the timeline.
func (d *Dispatcher) Dispatch(raw json.RawMessage) {
	var fr messageFrame
	if err := json.Unmarshal(raw, &fr); err != nil {
		d.fireError(WrapError(ErrorSerialization, "failed to unmarshal message frame", err))
		return
	}
	msg, err := fr.toMessage()
	if err != nil {
		d.fireError(err)
		return
	}
	if d.onMessage != nil {
		d.onMessage(msg)
	}
}

func (d *Dispatcher) fireState(ev StateEvent) {
	if d.onStateChanged != nil {
		d.onStateChanged(ev)
	}
}

func (d *Dispatcher) fireError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}
