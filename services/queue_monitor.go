package services

import (
	"time"

	"github.com/yeremiapane/hotel-ops/engine"
	"github.com/yeremiapane/hotel-ops/relay"
	"github.com/yeremiapane/hotel-ops/store"
	"github.com/yeremiapane/hotel-ops/utils"
)

// QueueMonitor periodically retries the offline queue while the link
// is up. The drain normally happens on reconnect; this catches
// envelopes queued by a mid-flight send failure that left the link
// itself healthy.
type QueueMonitor struct {
	Store    *store.Store
	Relay    *relay.Client
	Engine   *engine.Engine
	StopChan chan struct{}
	Interval time.Duration
}

func NewQueueMonitor(st *store.Store, rc *relay.Client, eng *engine.Engine) *QueueMonitor {
	return &QueueMonitor{
		Store:    st,
		Relay:    rc,
		Engine:   eng,
		StopChan: make(chan struct{}),
		Interval: 5 * time.Second,
	}
}

func (qm *QueueMonitor) Start() {
	go func() {
		ticker := time.NewTicker(qm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				qm.checkQueue()
			case <-qm.StopChan:
				return
			}
		}
	}()
}

func (qm *QueueMonitor) Stop() {
	close(qm.StopChan)
}

func (qm *QueueMonitor) checkQueue() {
	if !qm.Relay.IsUp() {
		return
	}

	count, err := qm.Store.OutboundLen()
	if err != nil {
		utils.ErrorLogger.Printf("queue monitor count failed: %v", err)
		return
	}
	if count == 0 {
		return
	}

	utils.InfoLogger.Printf("queue monitor: %d stranded envelopes, draining", count)
	qm.Engine.DrainOutbound()
}
