// ABOUTME: Tests for the simulated uploader
// ABOUTME: Covers URL construction, name cleanup and cancellation without leaked goroutines

package upload

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSimulated_Upload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		base     string
		wantName string
		wantURL  string
	}{
		{"contract.pdf", "", "contract.pdf", "https://example.com/uploads/contract.pdf"},
		{"my file.pdf", "https://files.test/u", "my file.pdf", "https://files.test/u/my%20file.pdf"},
		{`C:\docs\nda.docx`, "", "nda.docx", "https://example.com/uploads/nda.docx"},
		{"/tmp/a.txt", "", "a.txt", "https://example.com/uploads/a.txt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := &Simulated{Delay: time.Millisecond, BaseURL: tc.base}
			got, err := s.Upload(context.Background(), tc.name, strings.NewReader("data"))
			if err != nil {
				t.Fatalf("Upload() error: %v", err)
			}
			if got.Name != tc.wantName || got.URL != tc.wantURL {
				t.Errorf("Upload() = %+v; want %q %q", got, tc.wantName, tc.wantURL)
			}
		})
	}
}

func TestSimulated_EmptyName(t *testing.T) {
	t.Parallel()

	if _, err := NewSimulated().Upload(context.Background(), "  ", nil); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestSimulated_Canceled(t *testing.T) {
	t.Parallel()

	s := &Simulated{Delay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	if _, err := s.Upload(ctx, "a.pdf", nil); !errors.Is(err, ErrCanceled) {
		t.Errorf("Upload() = %v; want ErrCanceled", err)
	}
}

func TestSimulated_CanceledBeforeRead(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSimulated().Upload(ctx, "a.pdf", strings.NewReader("x")); !errors.Is(err, ErrCanceled) {
		t.Errorf("Upload() = %v; want ErrCanceled", err)
	}
}
