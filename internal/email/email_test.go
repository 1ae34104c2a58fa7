package email

import (
	"context"
	"errors"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/tcp_snm/deepshift/internal/app_errors"
)

type recordingDialer struct {
	mu   sync.Mutex
	sent []*gomail.Message
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, m...)
	return nil
}

func newTestService(from string) (*EmailService, *recordingDialer) {
	d := &recordingDialer{}
	return &EmailService{
		from:   from,
		dialer: d,
		jobs:   make(chan emailJob, 4),
		logger: log.WithField("from", "test"),
	}, d
}

func TestWorkersDeliverQueuedMail(t *testing.T) {
	svc, d := newTestService("noreply@deepshift.test")
	svc.StartEmailWorkers(2)

	for i := 0; i < 3; i++ {
		if err := svc.Send(context.Background(), PaymentApprovedMail("a@b.c", "Asha", "Weekly")); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	svc.Stop()

	if len(d.sent) != 3 {
		t.Fatalf("expected 3 delivered mails, got %d", len(d.sent))
	}
	if got := d.sent[0].GetHeader(KeyEmailTo); len(got) != 1 || got[0] != "a@b.c" {
		t.Fatalf("unexpected recipients %v", got)
	}
}

func TestSendWithoutSender(t *testing.T) {
	svc, _ := newTestService("")
	err := svc.Send(context.Background(), PaymentApprovedMail("a@b.c", "Asha", "Weekly"))
	if !errors.Is(err, app_errors.ErrEmailServiceStopped) {
		t.Fatalf("expected email service stopped, got %v", err)
	}
}

func TestSendHonoursContext(t *testing.T) {
	svc, _ := newTestService("noreply@deepshift.test")
	svc.jobs = make(chan emailJob) // no workers, unbuffered
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := svc.Send(ctx, ResultsPublishedMail([]string{"a@b.c"}, "Weekly"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
