package email

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// DevSender implements EmailSender for local development: it writes emails
// to an io.Writer instead of sending them through an email service.
type DevSender struct {
	mu  sync.Mutex
	out io.Writer
}

// NewDevSender creates a development email sender writing to out,
// typically os.Stdout or a log file.
func NewDevSender(out io.Writer) *DevSender {
	return &DevSender{out: out}
}

func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := fmt.Fprintf(d.out, "To: %s\nSubject: %s\nTag: %s\n\n%s\n\n", params.SendTo, params.Subject, params.Tag, params.BodyHTML)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToSendEmail, err)
	}
	return nil
}
