package events

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Manager fans item events out to its observers, either inline (Notify) or
// through a buffered channel drained by a fixed pool of workers.
type Manager struct {
	observers    map[string]Observer
	eventChannel chan ItemEvent
	workerPool   int
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

func NewManager(workerPoolSize, bufferSize int) *Manager {
	if workerPoolSize <= 0 {
		workerPoolSize = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		observers:    make(map[string]Observer),
		eventChannel: make(chan ItemEvent, bufferSize),
		workerPool:   workerPoolSize,
		ctx:          ctx,
		cancel:       cancel,
	}

	for i := 0; i < workerPoolSize; i++ {
		m.wg.Add(1)
		go m.processEvents()
	}

	return m
}

func (m *Manager) Subscribe(observer Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers[observer.Name()] = observer
	logrus.WithField("observer", observer.Name()).Info("observer subscribed")
}

func (m *Manager) Unsubscribe(observer Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.observers, observer.Name())
	logrus.WithField("observer", observer.Name()).Info("observer unsubscribed")
}

// Notify delivers event to every observer on the calling goroutine. Observer
// failures are logged and do not stop delivery to the others.
func (m *Manager) Notify(event ItemEvent) {
	m.mu.RLock()
	observers := make([]Observer, 0, len(m.observers))
	for _, obs := range m.observers {
		observers = append(observers, obs)
	}
	m.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Update(event); err != nil {
			logrus.WithFields(logrus.Fields{
				"observer": observer.Name(),
				"event":    event.Type,
				"item_id":  event.ItemID,
			}).WithError(err).Warn("observer update failed")
		}
	}
}

// NotifyAsync queues event for the worker pool and drops it when the queue
// is full or the manager is shut down.
func (m *Manager) NotifyAsync(event ItemEvent) {
	select {
	case <-m.ctx.Done():
		return
	default:
	}

	select {
	case m.eventChannel <- event:
	case <-m.ctx.Done():
	default:
		logrus.WithField("event", event.Type).Warn("event channel full, dropping event")
	}
}

func (m *Manager) processEvents() {
	defer m.wg.Done()

	for {
		select {
		case event := <-m.eventChannel:
			m.Notify(event)
		case <-m.ctx.Done():
			return
		}
	}
}

// Shutdown stops the workers and waits for them. Queued events that were not
// picked up yet are discarded.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.cancel()
		m.wg.Wait()
		logrus.Info("event manager shutdown complete")
	})
}
