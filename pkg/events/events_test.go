package events

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPublisher(t *testing.T) {
	log, hook := test.NewNullLogger()
	p := LogPublisher{Log: log}

	err := p.PublishCompleted(context.Background(), ReportCompleted{
		ReportID:    "report_1_abcde",
		CreatedBy:   "user-1",
		CompletedAt: time.Date(2025, 5, 16, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "report_1_abcde", hook.LastEntry().Data["report_id"])
}

func TestNewPubSubPublisher_RequiresTopic(t *testing.T) {
	_, err := NewPubSubPublisher(context.Background(), "proj", "", "")
	assert.Error(t, err)
}
