// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scanner receives barcode scans from the gate readers over
// MQTT and publishes the toggle results back to them.
//
// A reader publishes {"code": "...", "request_id": "..."} to the
// <prefix>/<gate>/scan topic and receives a Result on the
// <prefix>/<gate>/result topic. The request_id is optional and makes
// the scan idempotent (if a deduplicator is configured), so readers
// may republish a scan whose result was lost.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/momeni/vehicle-access/pkg/core/cerr"
	"github.com/momeni/vehicle-access/pkg/core/log"
	"github.com/momeni/vehicle-access/pkg/core/model"
)

// Toggler is the gate use case as seen by the scanner.
type Toggler interface {
	Toggle(ctx context.Context, code, requestID string) (*model.Toggle, error)
}

// Request is the payload of a scan message.
type Request struct {
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// Result is the payload of a result message.
type Result struct {
	OK     bool               `json:"ok"`
	Status int                `json:"status"`
	Kind   *model.Transition  `json:"kind,omitempty"`
	Event  *model.AccessEvent `json:"event,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Config holds the broker connection settings.
type Config struct {
	Broker      string // e.g., tcp://localhost:1883
	ClientID    string
	TopicPrefix string
	QoS         byte
}

// Scanner subscribes to the scan topics and toggles vehicles.
type Scanner struct {
	cfg     Config
	toggler Toggler
	client  mqtt.Client
	timeout time.Duration
}

// New creates a Scanner. Start must be called to connect.
func New(cfg Config, t Toggler) *Scanner {
	cfg.TopicPrefix = strings.Trim(cfg.TopicPrefix, "/")
	return &Scanner{cfg: cfg, toggler: t, timeout: 10 * time.Second}
}

func (s *Scanner) scanTopic() string {
	return s.cfg.TopicPrefix + "/+/scan"
}

// Start connects to the broker and subscribes to the scan topics. The
// subscription is renewed after each reconnection. Messages are
// handled with contexts derived from ctx.
func (s *Scanner) Start(ctx context.Context) error {
	opts := s.clientOptions(ctx)
	s.client = mqtt.NewClient(opts)
	tok := s.client.Connect()
	if !tok.WaitTimeout(s.timeout) {
		return fmt.Errorf("connecting to %s: timed out", s.cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("connecting to %s: %w", s.cfg.Broker, err)
	}
	return nil
}

// clientOptions configures the broker connection. Messages are not
// ordered, so each one is handled in its own goroutine and a handler
// which waits for its publication does not block the acknowledgements
// of the paho router.
func (s *Scanner) clientOptions(ctx context.Context) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetOrderMatters(false)
	opts.OnConnect = func(c mqtt.Client) {
		tok := c.Subscribe(s.scanTopic(), s.cfg.QoS, func(c mqtt.Client, m mqtt.Message) {
			s.onMessage(ctx, c, m)
		})
		tok.Wait()
		if err := tok.Error(); err != nil {
			log.Error(ctx, "mqtt subscribe failed", log.Err("err", err))
			return
		}
		log.Info(ctx, "mqtt subscribed", slog.String("topic", s.scanTopic()))
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn(ctx, "mqtt connection lost", log.Err("err", err))
	}
	return opts
}

// Stop disconnects from the broker, waiting up to 250ms for the
// in-flight work.
func (s *Scanner) Stop() {
	if s.client != nil {
		s.client.Disconnect(250)
	}
}

func (s *Scanner) onMessage(ctx context.Context, c mqtt.Client, m mqtt.Message) {
	hctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	topic, payload, ok := s.handle(hctx, m.Topic(), m.Payload())
	if !ok {
		return
	}
	tok := c.Publish(topic, s.cfg.QoS, false, payload)
	go func() {
		if !tok.WaitTimeout(s.timeout) || tok.Error() != nil {
			log.Warn(
				ctx, "mqtt publish failed",
				slog.String("topic", topic), log.Err("err", tok.Error()),
			)
		}
	}()
}

// handle processes one scan message and returns the topic and payload
// of its result. The ok return value is false if the topic is not a
// scan topic, so there is no gate to respond to.
func (s *Scanner) handle(ctx context.Context, topic string, payload []byte) (string, []byte, bool) {
	gate, ok := s.gateOf(topic)
	if !ok {
		log.Warn(ctx, "unexpected mqtt topic", slog.String("topic", topic))
		return "", nil, false
	}
	ctx = log.With(ctx, slog.String("gate", gate))
	resTopic := s.cfg.TopicPrefix + "/" + gate + "/result"
	var req Request
	var res Result
	if err := json.Unmarshal(payload, &req); err != nil {
		res = failure(cerr.BadRequest(fmt.Errorf("decoding scan: %w", err)))
	} else {
		t, err := s.toggler.Toggle(ctx, req.Code, req.RequestID)
		if err != nil {
			res = failure(err)
		} else {
			res = Result{OK: true, Status: http.StatusOK, Kind: &t.Kind, Event: &t.Event}
		}
	}
	log.Debug(ctx, "scan handled", slog.Int("status", res.Status))
	b, err := json.Marshal(res)
	if err != nil {
		log.Error(ctx, "encoding scan result", log.Err("err", err))
		return "", nil, false
	}
	return resTopic, b, true
}

func (s *Scanner) gateOf(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, s.cfg.TopicPrefix+"/")
	if !ok {
		return "", false
	}
	gate, ok := strings.CutSuffix(rest, "/scan")
	if !ok || gate == "" || strings.Contains(gate, "/") {
		return "", false
	}
	return gate, true
}

func failure(err error) Result {
	status := http.StatusInternalServerError
	var ce *cerr.Error
	if errors.As(err, &ce) {
		status = ce.HTTPStatusCode
	}
	return Result{Status: status, Error: err.Error()}
}
