package sim

// queueBehavior buffers request ids and drains them one at a time, each
// taking a sampled processing time.
type queueBehavior struct {
	id    string
	cfg   QueueConfig
	state QueueState
}

func (b *queueBehavior) Kind() NodeKind   { return KindQueue }
func (b *queueBehavior) State() NodeState { return b.state.clone() }

func (b *queueBehavior) HandleRequest(env Env, ev Event, _ []string) error {
	if len(b.state.Buffer) >= b.cfg.MaxDepth {
		b.state.TotalDropped++
		if b.cfg.DeadLetterEnabled {
			return env.Sched.Schedule(Event{
				Time:    ev.Time,
				Type:    EventQueueDeadLetter,
				NodeID:  b.id,
				Payload: DropPayload{RequestMeta: requestMeta(ev), Reason: DropQueueFull},
			})
		}
		return reject(env, ev, b.id, DropQueueFull)
	}
	b.state.Buffer = append(b.state.Buffer, requestMeta(ev).RequestID)
	b.state.TotalEnqueued++
	if b.state.IsProcessing {
		return nil
	}
	b.state.IsProcessing = true
	return b.scheduleDequeue(env, ev.Time)
}

// HandleDequeue pops the head of the buffer and completes it towards
// targets. The completion carries only the request id; the start time is
// recovered from the simulator's in-flight bookkeeping.
func (b *queueBehavior) HandleDequeue(env Env, ev Event, targets []string) error {
	if len(b.state.Buffer) == 0 {
		b.state.IsProcessing = false
		return nil
	}
	id := b.state.Buffer[0]
	b.state.Buffer[0] = ""
	b.state.Buffer = b.state.Buffer[1:]
	b.state.TotalDequeued++
	err := env.Sched.Schedule(Event{
		Time:    ev.Time,
		Type:    EventRequestComplete,
		NodeID:  b.id,
		Payload: CompletePayload{RequestMeta: RequestMeta{RequestID: id}, OutEdges: targets},
	})
	if err != nil {
		return err
	}
	if len(b.state.Buffer) == 0 {
		b.state.IsProcessing = false
		return nil
	}
	return b.scheduleDequeue(env, ev.Time)
}

func (b *queueBehavior) scheduleDequeue(env Env, now float64) error {
	return env.Sched.Schedule(Event{
		Time:    now + sampleDelay(b.cfg.ProcessingTimeMs, env.RNG),
		Type:    EventQueueDequeue,
		NodeID:  b.id,
		Payload: DequeuePayload{},
	})
}
