// Package events announces report lifecycle changes to downstream workers
// (render and print jobs).
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const TypeReportCompleted = "report.completed"

// ReportCompleted is published once a report is finalized.
type ReportCompleted struct {
	Type        string    `json:"type"`
	ReportID    string    `json:"reportId"`
	CreatedBy   string    `json:"createdBy"`
	CompletedAt time.Time `json:"completedAt"`
}

// Publisher delivers completion events.
type Publisher interface {
	PublishCompleted(ctx context.Context, ev ReportCompleted) error
}

// PubSubPublisher publishes to a Google Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func NewPubSubPublisher(ctx context.Context, projectID, topic, credJSON string) (*PubSubPublisher, error) {
	if projectID == "" || topic == "" {
		return nil, errors.New("pubsub project and topic are required")
	}
	var opts []option.ClientOption
	if credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	c, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("init pubsub client: %w", err)
	}
	return &PubSubPublisher{client: c, topic: c.Topic(topic)}, nil
}

func (p *PubSubPublisher) PublishCompleted(ctx context.Context, ev ReportCompleted) error {
	ev.Type = TypeReportCompleted
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	res := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"type": ev.Type, "reportId": ev.ReportID},
	})
	_, err = res.Get(ctx)
	return err
}

func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}

// LogPublisher writes events to the log. Used when no topic is configured.
type LogPublisher struct {
	Log logrus.FieldLogger
}

func (p LogPublisher) PublishCompleted(_ context.Context, ev ReportCompleted) error {
	p.Log.WithFields(logrus.Fields{
		"event":        TypeReportCompleted,
		"report_id":    ev.ReportID,
		"owner":        ev.CreatedBy,
		"completed_at": ev.CompletedAt,
	}).Info("report completed")
	return nil
}
