// Package coordinator wires the voice monitor's trigger events to the
// alert dispatcher & hands registry access to the outer surfaces.
package coordinator

import (
	"context"

	"github.com/AkashSundaramoorthi/Haven/dispatch"
	"github.com/AkashSundaramoorthi/Haven/registry"
	"github.com/AkashSundaramoorthi/Haven/server/logger"
	"github.com/AkashSundaramoorthi/Haven/voice"
)

var logg = logger.NewLogger()

type Coordinator struct {
	registry   *registry.Registry
	monitor    *voice.Monitor
	dispatcher *dispatch.Dispatcher

	stopChan chan struct{}
	started  bool
}

func New(reg *registry.Registry, monitor *voice.Monitor, dispatcher *dispatch.Dispatcher) *Coordinator {
	return &Coordinator{
		registry:   reg,
		monitor:    monitor,
		dispatcher: dispatcher,
		stopChan:   make(chan struct{}),
	}
}

func (c *Coordinator) Registry() *registry.Registry {
	return c.registry
}

func (c *Coordinator) Monitor() *voice.Monitor {
	return c.monitor
}

func (c *Coordinator) Dispatcher() *dispatch.Dispatcher {
	return c.dispatcher
}

// Start runs the event loop bridging voice events to the dispatcher.
func (c *Coordinator) Start() {
	if c.started {
		return
	}
	c.started = true

	go c.loop()
}

// Stop ends the event loop & tears down the voice monitor.
func (c *Coordinator) Stop() {
	if !c.started {
		return
	}
	c.started = false

	c.stopChan <- struct{}{}

	if err := c.monitor.Destroy(); err != nil {
		logg.Errorf("error destroying voice monitor: %v", err)
	}
}

func (c *Coordinator) loop() {
	for {
		select {
		case <-c.stopChan:
			return
		case event := <-c.monitor.Events():
			c.handleEvent(event)
		}
	}
}

func (c *Coordinator) handleEvent(event voice.Event) {
	switch event.Kind {
	case voice.TriggerEvent:
		logg.Infof("trigger phrase detected in %q - dispatching emergency alert", event.Text)

		alert, err := c.dispatcher.Send(context.Background())
		if err != nil {
			logg.Errorf("emergency dispatch failed: %v", err)
			return
		}
		logg.Infof("emergency alert handed off to %v channel for %v recipient(s)",
			alert.Channel, len(alert.Recipients))

	case voice.ResultEvent:
		logg.Infof("detected speech: %v", event.Text)

	case voice.ErrorEvent:
		logg.Errorf("speech recognition error: %v", event.Err)
	}
}
