package email

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/tcp_snm/deepshift/internal/app_errors"
)

type EmailPurpose string
type EmailBodyType string

const (
	KeyEmailFrom                              = "From"
	KeyEmailTo                                = "To"
	KeyEmailSubject                           = "Subject"
	KeyEmailBodyPlain           EmailBodyType = "text/plain"
	KeyEmailBodyHTML            EmailBodyType = "text/html"
	PurposePaymentApproved      EmailPurpose  = "payment_approved"
	PurposeResultsPublished     EmailPurpose  = "results_published"
	defaultEmailChannelCapacity               = 100
)

type EmailRequest struct {
	To       []string
	Subject  string
	Body     string
	BodyType EmailBodyType
	Purpose  EmailPurpose
}

// Mailer queues an email for delivery.
type Mailer interface {
	Send(ctx context.Context, req EmailRequest) error
}

type Config struct {
	Sender   string
	Password string
	SMTPHost string
	SMTPPort int
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailJob struct {
	EmailRequest
	from string
}

// EmailService delivers mail through a pool of workers reading from a
// buffered channel.
type EmailService struct {
	from   string
	dialer dialer
	jobs   chan emailJob
	wg     sync.WaitGroup
	logger *log.Entry
}

func NewEmailService(cfg Config) *EmailService {
	return &EmailService{
		from:   cfg.Sender,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Sender, cfg.Password),
		jobs:   make(chan emailJob, defaultEmailChannelCapacity),
		logger: log.WithField("from", "email service"),
	}
}

// StartEmailWorkers launches n workers. Stop closes the queue and waits for
// them to drain it.
func (e *EmailService) StartEmailWorkers(n int) {
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
	e.logger.Infof("started %d email workers", n)
}

func (e *EmailService) Stop() {
	close(e.jobs)
	e.wg.Wait()
}

func (e *EmailService) worker(id int) {
	defer e.wg.Done()
	for job := range e.jobs {
		m := gomail.NewMessage()
		m.SetHeader(KeyEmailFrom, job.from)
		m.SetHeader(KeyEmailTo, job.To...)
		m.SetHeader(KeyEmailSubject, job.Subject)
		m.SetBody(string(job.BodyType), job.Body)

		if err := e.dialer.DialAndSend(m); err != nil {
			e.logger.Errorf("worker %d failed to send %s mail: %v", id, job.Purpose, err)
			continue
		}
		e.logger.Debugf("worker %d sent %s mail to %d recipients", id, job.Purpose, len(job.To))
	}
}

func (e *EmailService) Send(ctx context.Context, req EmailRequest) error {
	if e.from == "" {
		e.logger.Error("sender email is not configured")
		return app_errors.ErrEmailServiceStopped
	}
	if len(req.To) == 0 {
		return nil
	}
	if req.BodyType == "" {
		req.BodyType = KeyEmailBodyPlain
	}

	job := emailJob{EmailRequest: req, from: e.from}
	// when all the workers are dead, it shouldn't block indefinetely
	select {
	case <-ctx.Done():
		e.logger.Errorf("email job cancelled: %v", ctx.Err())
		return errors.Join(app_errors.ErrEmailServiceStopped, ctx.Err())
	case e.jobs <- job:
		return nil
	}
}

// NoopMailer discards mail. Used when no sender is configured.
type NoopMailer struct{}

func (NoopMailer) Send(context.Context, EmailRequest) error { return nil }
