package errors

import (
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrCommandNotFound", ErrCommandNotFound, "command not found"},
		{"ErrCommandFailed", ErrCommandFailed, "command failed"},
		{"ErrTimeoutExceeded", ErrTimeoutExceeded, "timeout exceeded"},
		{"ErrPermissionDenied", ErrPermissionDenied, "permission denied"},
		{"ErrInvalidConfig", ErrInvalidConfig, "invalid configuration"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrReportUnavailable", ErrReportUnavailable, "report unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error message = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("wrap nil error", func(t *testing.T) {
		if got := Wrap(nil, "context"); got != nil {
			t.Errorf("Wrap(nil) = %v, want nil", got)
		}
	})

	t.Run("wrap with args", func(t *testing.T) {
		got := Wrap(ErrTimeoutExceeded, "%s timed out after %ds", "ufw", 5)
		want := "ufw timed out after 5s: timeout exceeded"
		if got.Error() != want {
			t.Errorf("Wrap() = %v, want %v", got.Error(), want)
		}
		if !Is(got, ErrTimeoutExceeded) {
			t.Error("Wrap() broke error chain")
		}
	})
}

func TestIs(t *testing.T) {
	wrapped := Wrap(ErrCommandNotFound, "rkhunter")

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same error", ErrCommandNotFound, ErrCommandNotFound, true},
		{"different error", ErrCommandNotFound, ErrCommandFailed, false},
		{"wrapped error", wrapped, ErrCommandNotFound, true},
		{"nil error", nil, ErrCommandNotFound, false},
		{"double wrapped", Wrap(wrapped, "ssh check"), ErrCommandNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.target); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}
