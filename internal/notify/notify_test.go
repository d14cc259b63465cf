package notify

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aprovame/internal/batch/models"
	id "aprovame/pkg/domain"
)

type captureSender struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (s *captureSender) Send(_ context.Context, msg Email) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func result(total, ok int, errs ...string) *models.Result {
	return &models.Result{
		BatchID:       id.NewBatchID(),
		TotalPayables: total,
		SuccessCount:  ok,
		FailureCount:  total - ok,
		Errors:        errs,
		ProcessedAt:   time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		part, total int
		want        string
	}{
		{1, 2, "50.00"},
		{1, 3, "33.33"},
		{2, 3, "66.67"},
		{3, 3, "100.00"},
		{0, 7, "0.00"},
		{0, 0, "0.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Percentage(tc.part, tc.total), "%d/%d", tc.part, tc.total)
	}
}

func TestRenderReport(t *testing.T) {
	t.Run("partial failure lists every error in order", func(t *testing.T) {
		r := result(3, 1, "item 2: failed to create payable: assignor not found", "item 3: failed to create payable: the value must be greater than zero")
		html, err := RenderReport(r)
		require.NoError(t, err)

		assert.Contains(t, html, r.BatchID.String())
		assert.Contains(t, html, "33.33%")
		assert.Contains(t, html, "66.67%")
		assert.Contains(t, html, `<div class="errors">`)
		first := strings.Index(html, "item 2:")
		second := strings.Index(html, "item 3:")
		assert.True(t, first > 0 && second > first)
	})

	t.Run("errors section omitted when nothing failed", func(t *testing.T) {
		html, err := RenderReport(result(2, 2))
		require.NoError(t, err)
		assert.NotContains(t, html, `class="errors"`)
		assert.Contains(t, html, "100.00%")
	})

	t.Run("error text is escaped", func(t *testing.T) {
		html, err := RenderReport(result(1, 0, "<script>alert(1)</script>"))
		require.NoError(t, err)
		assert.NotContains(t, html, "<script>")
		assert.Contains(t, html, "&lt;script&gt;")
	})

	t.Run("empty batch reports zero percent", func(t *testing.T) {
		html, err := RenderReport(result(0, 0))
		require.NoError(t, err)
		assert.Contains(t, html, "0.00%")
	})
}

func TestMailer(t *testing.T) {
	ctx := context.Background()

	t.Run("empty recipient falls back to the default", func(t *testing.T) {
		sender := &captureSender{}
		m := NewMailer(sender, "noreply@bankme.com")
		r := result(1, 1)

		require.NoError(t, m.NotifyBatchCompleted(ctx, r, ""))
		require.Len(t, sender.sent, 1)
		assert.Equal(t, DefaultRecipient, sender.sent[0].To)
		assert.Equal(t, "noreply@bankme.com", sender.sent[0].From)
		assert.Equal(t, "Batch processing completed - "+r.BatchID.String(), sender.sent[0].Subject)
	})

	t.Run("configured fallback and explicit recipient", func(t *testing.T) {
		sender := &captureSender{}
		m := NewMailer(sender, "noreply@bankme.com", WithFallbackRecipient("ops@bankme.com"))

		require.NoError(t, m.NotifyBatchCompleted(ctx, result(1, 1), "  "))
		require.NoError(t, m.NotifyBatchCompleted(ctx, result(1, 1), "finance@bankme.com"))
		assert.Equal(t, "ops@bankme.com", sender.sent[0].To)
		assert.Equal(t, "finance@bankme.com", sender.sent[1].To)
	})

	t.Run("sender failure is returned to the caller", func(t *testing.T) {
		boom := errors.New("relay refused")
		m := NewMailer(&captureSender{err: boom}, "noreply@bankme.com")
		assert.ErrorIs(t, m.NotifyBatchCompleted(ctx, result(1, 1), ""), boom)
	})
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(nil).Send(context.Background(), Email{To: "a@b.com", Subject: "s"}))
}

// fakeSMTP accepts one message without TLS or auth and records the DATA section.
type fakeSMTP struct {
	ln   net.Listener
	mu   sync.Mutex
	from string
	to   string
	data string
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeSMTP{ln: ln}
	t.Cleanup(func() { ln.Close() })
	go f.serve()
	return f
}

func (f *fakeSMTP) serve() {
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	tp := textproto.NewConn(conn)
	reply := func(line string) { _ = tp.PrintfLine("%s", line) }

	reply("220 fake ESMTP")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		cmd := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 fake")
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			f.mu.Lock()
			f.from = strings.Trim(line[len("MAIL FROM:"):], "<> ")
			f.mu.Unlock()
			reply("250 ok")
		case strings.HasPrefix(cmd, "RCPT TO:"):
			f.mu.Lock()
			f.to = strings.Trim(line[len("RCPT TO:"):], "<> ")
			f.mu.Unlock()
			reply("250 ok")
		case cmd == "DATA":
			reply("354 go ahead")
			body, err := readData(tp.Reader.R)
			if err != nil {
				return
			}
			f.mu.Lock()
			f.data = body
			f.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 ok")
		}
	}
}

func readData(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		if line == ".\r\n" {
			return b.String(), nil
		}
		b.WriteString(line)
	}
}

func TestSMTPSender(t *testing.T) {
	srv := startFakeSMTP(t)
	host, port, err := net.SplitHostPort(srv.ln.Addr().String())
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port)
	require.NoError(t, err)

	sender := NewSMTPSender(SMTPConfig{Host: host, Port: portNum})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = sender.Send(ctx, Email{
		From:    "noreply@bankme.com",
		To:      "finance@bankme.com",
		Subject: "Batch processing completed - abc",
		HTML:    "<p>done</p>",
	})
	require.NoError(t, err)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, "noreply@bankme.com", srv.from)
	assert.Equal(t, "finance@bankme.com", srv.to)
	assert.Contains(t, srv.data, "Subject: Batch processing completed - abc")
	assert.Contains(t, srv.data, "Content-Type: text/html")
	assert.Contains(t, srv.data, "<p>done</p>")
}

func TestSMTPSender_UnreachableRelay(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	sender := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: addr.Port})
	err = sender.Send(context.Background(), Email{From: "a@b.com", To: "c@d.com"})
	assert.Error(t, err)
}
